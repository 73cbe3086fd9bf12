package pubsub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	bridge := NewWatermillBridge()
	t.Cleanup(func() { _ = bridge.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, "test.topic", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	}))

	require.NoError(t, bridge.Publish(ctx, Message{
		Topic:    "test.topic",
		UserID:   "user123",
		Payload:  []byte(`{"hello":"world"}`),
		Metadata: map[string]string{"request_id": "req-123", metaKeyTopic: "spoofed"},
	}))

	select {
	case msg := <-received:
		assert.Equal(t, "test.topic", msg.Topic)
		assert.Equal(t, "user123", msg.UserID)
		assert.JSONEq(t, `{"hello":"world"}`, string(msg.Payload))
		assert.Equal(t, "req-123", msg.Metadata["request_id"])
		assert.NotContains(t, msg.Metadata, metaKeyTopic)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestWatermillBridge_HandlerErrorDoesNotStopSubscription(t *testing.T) {
	bridge := NewWatermillBridge()
	t.Cleanup(func() { _ = bridge.Close() })
	ctx := context.Background()

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})
	require.NoError(t, bridge.Subscribe(ctx, "flaky", func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(msg.Payload))
		if len(seen) == 2 {
			close(done)
		}
		if string(msg.Payload) == "bad" {
			return errors.New("cannot process")
		}
		return nil
	}))

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "flaky", Payload: []byte("bad")}))
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "flaky", Payload: []byte("good")}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second message was not delivered")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"bad", "good"}, seen)
}

func TestTypedEvent(t *testing.T) {
	bridge := NewWatermillBridge()
	t.Cleanup(func() { _ = bridge.Close() })
	ctx := context.Background()

	got := make(chan domain.EntityEvent, 1)
	require.NoError(t, Subscribe(ctx, bridge, EntityActivity, func(ctx context.Context, ev domain.EntityEvent) error {
		got <- ev
		return nil
	}))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, Publish(ctx, bridge, EntityActivity, "u-1", domain.EntityEvent{
		Entity: "property", Action: domain.ActionCreated, ID: "p-1", Label: "Casa en Polanco", ActorID: "u-1", At: at,
	}))

	select {
	case ev := <-got:
		assert.Equal(t, "property", ev.Entity)
		assert.Equal(t, domain.ActionCreated, ev.Action)
		assert.Equal(t, "Casa en Polanco", ev.Label)
		assert.True(t, at.Equal(ev.At))
	case <-time.After(2 * time.Second):
		t.Fatal("typed event was not delivered")
	}
	assert.Equal(t, domain.TopicEntityActivity, EntityActivity.Name())
}

func TestSetupOTel(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled tracing", func(t *testing.T) {
		tracer, shutdown, err := SetupOTel(ctx, TracingConfig{Enabled: false})
		require.NoError(t, err)
		_, span := tracer.Start(ctx, "test")
		span.End()
		assert.NoError(t, shutdown(ctx))
	})

	t.Run("enabled tracing feeds the bridge", func(t *testing.T) {
		tracer, shutdown, err := SetupOTel(ctx, TracingConfig{
			Enabled:     true,
			ServiceName: "test-service",
			ZipkinURL:   "http://invalid-url:9411/api/v2/spans",
		})
		require.NoError(t, err)
		require.NotNil(t, tracer)

		bridge := NewWatermillBridgeWithTracer(tracer)
		assert.NoError(t, bridge.Publish(ctx, Message{Topic: "nobody.listens", Payload: []byte("x")}))
		assert.NoError(t, bridge.Close())

		// Export to the unreachable collector may fail; shutdown must return.
		shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	})
}
