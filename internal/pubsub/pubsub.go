// Package pubsub carries domain events between modules over an in-process bus.
package pubsub

import (
	"context"
)

// Message is one event on the bus.
type Message struct {
	// Topic names the stream, such as domain.TopicEntityActivity.
	Topic string
	// UserID is the actor that caused the event. Empty for system events.
	UserID string
	// Payload is the JSON encoded event body.
	Payload []byte
	// Metadata travels with the message; tracing stores its propagation
	// headers here.
	Metadata map[string]string
}

// Handler processes one delivered message. The in-memory bus never
// redelivers, so a returned error is logged and the message is dropped.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber receives messages.
type Subscriber interface {
	// Subscribe delivers every message on topic to handler in the background
	// until ctx is canceled or the subscriber is closed.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Bus is both ends of the same transport.
type Bus interface {
	Publisher
	Subscriber
}

var _ Bus = (*WatermillBridge)(nil)
