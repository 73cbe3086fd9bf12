package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nfrund/propdesk/internal/domain"
)

// Event[T] ties a topic name to its payload type so publishers and
// subscribers cannot disagree on the shape of a message.
type Event[T any] struct {
	topic string
}

// NewEvent creates a typed event for topic.
func NewEvent[T any](topic string) Event[T] {
	return Event[T]{topic: topic}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topic
}

// EntityActivity carries every create, update and delete of a back-office record.
var EntityActivity = NewEvent[domain.EntityEvent](domain.TopicEntityActivity)

// Publish sends a typed event. The compiler ensures payload matches T.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Name(), err)
	}
	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		UserID:  userID,
		Payload: data,
	})
}

// Subscribe registers a handler that receives decoded payloads of event.
// Payloads that cannot be decoded are reported as handler errors.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, payload T) error) error {
	return s.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Name(), err)
		}
		return handler(ctx, payload)
	})
}
