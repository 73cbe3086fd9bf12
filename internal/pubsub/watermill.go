package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// WatermillBridge implements Publisher and Subscriber over watermill's
// in-memory GoChannel.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	tracer trace.Tracer
	logger watermill.LoggerAdapter
}

const (
	// Metadata keys used to carry Message fields through watermill's message.
	metaKeyUserID = "user_id"
	metaKeyTopic  = "topic"
)

// NewWatermillBridge initializes an in-memory bus without tracing.
func NewWatermillBridge() *WatermillBridge {
	return NewWatermillBridgeWithTracer(noop.NewTracerProvider().Tracer(tracerName))
}

// NewWatermillBridgeWithTracer initializes an in-memory bus whose publish and
// process operations are recorded as spans by tracer.
func NewWatermillBridgeWithTracer(tracer trace.Tracer) *WatermillBridge {
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		logger,
	)

	return &WatermillBridge{
		pub:    newTracingPublisher(goChannel, tracer),
		sub:    goChannel,
		tracer: tracer,
		logger: logger,
	}
}

// mapToWatermillMessage converts a Message to a watermill message.
func mapToWatermillMessage(msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)

	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}
	// Reserved keys win over caller metadata.
	wmMsg.Metadata.Set(metaKeyUserID, msg.UserID)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)

	return wmMsg
}

// mapToPubSubMessage converts a watermill message back to a Message.
func mapToPubSubMessage(wmMsg *message.Message) Message {
	userID := wmMsg.Metadata.Get(metaKeyUserID)
	topic := wmMsg.Metadata.Get(metaKeyTopic)

	metadata := make(map[string]string)
	for k, v := range wmMsg.Metadata {
		if k != metaKeyUserID && k != metaKeyTopic {
			metadata[k] = v
		}
	}

	return Message{
		Topic:    topic,
		UserID:   userID,
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	wmMsg := mapToWatermillMessage(msg)
	wmMsg.SetContext(ctx)
	return wb.pub.Publish(msg.Topic, wmMsg)
}

// Subscribe implements the Subscriber interface. Messages are handled on a
// background goroutine, one at a time, in publish order.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	process := traceHandler(wb.tracer, topic, handler)
	go func() {
		for wmMsg := range messages {
			msg := mapToPubSubMessage(wmMsg)
			if err := process(ctx, wmMsg, msg); err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
				// The in-memory bus does not redeliver, so a Nack only drops the message.
				wmMsg.Nack()
				continue
			}
			wmMsg.Ack()
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close implements the Publisher and Subscriber interface to shut down the bridge.
func (wb *WatermillBridge) Close() error {
	// Closing the subscriber closes the gochannel and ends every subscription.
	return wb.sub.Close()
}
