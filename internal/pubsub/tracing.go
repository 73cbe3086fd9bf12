package pubsub

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nfrund/propdesk/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "propdesk-pubsub"

// TracingConfig holds configuration for OpenTelemetry tracing of the bus.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	ZipkinURL   string
}

// TracingConfigFrom reads the tracing settings from the application config.
func TracingConfigFrom(cfg config.Provider) TracingConfig {
	return TracingConfig{
		Enabled:     cfg.GetTracingEnabled(),
		ServiceName: cfg.GetTracingServiceName(),
		ZipkinURL:   cfg.GetTracingZipkinURL(),
	}
}

// SetupOTel initializes OpenTelemetry with a Zipkin exporter. When tracing is
// disabled it returns a no-op tracer. The returned function flushes and stops
// the exporter.
func SetupOTel(ctx context.Context, cfg TracingConfig) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider().Tracer(tracerName), func(context.Context) error { return nil }, nil
	}

	exporter, err := zipkin.New(cfg.ZipkinURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create zipkin exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Tracer(tracerName), tp.Shutdown, nil
}

// tracingPublisher wraps a watermill publisher and opens a span per message.
type tracingPublisher struct {
	publisher message.Publisher
	tracer    trace.Tracer
}

func newTracingPublisher(publisher message.Publisher, tracer trace.Tracer) *tracingPublisher {
	return &tracingPublisher{publisher: publisher, tracer: tracer}
}

// Publish wraps the publish operation with tracing.
func (p *tracingPublisher) Publish(topic string, messages ...*message.Message) error {
	spans := make([]trace.Span, 0, len(messages))
	for _, msg := range messages {
		spanCtx, span := p.tracer.Start(msg.Context(), "pubsub.publish."+topic,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(messageAttributes(topic, "publish", msg)...),
		)
		msg.SetContext(spanCtx)
		spans = append(spans, span)
	}

	err := p.publisher.Publish(topic, messages...)
	for _, span := range spans {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
	return err
}

// Close closes the underlying publisher.
func (p *tracingPublisher) Close() error {
	return p.publisher.Close()
}

// traceHandler runs handler inside a span describing the processed message.
func traceHandler(tracer trace.Tracer, topic string, handler Handler) func(ctx context.Context, wmMsg *message.Message, msg Message) error {
	return func(ctx context.Context, wmMsg *message.Message, msg Message) error {
		spanCtx, span := tracer.Start(ctx, "pubsub.process."+topic,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(messageAttributes(topic, "process", wmMsg)...),
		)
		defer span.End()

		if err := handler(spanCtx, msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
}

func messageAttributes(topic, operation string, msg *message.Message) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("messaging.system", "watermill"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.message_id", msg.UUID),
		attribute.String("user.id", msg.Metadata.Get(metaKeyUserID)),
		attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
	}
}
