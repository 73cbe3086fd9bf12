package activity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/pubsub"
)

// DefaultSize is used when the configured buffer size is not positive.
const DefaultSize = 100

// listenerBuffer is how many events a live listener may fall behind before
// it is dropped.
const listenerBuffer = 32

// Listener receives events as they arrive. Events is closed when the
// listener is removed or falls too far behind.
type Listener struct {
	Events chan domain.EntityEvent

	// set before Events is closed
	dropped bool
}

// Dropped reports whether Events was closed because the listener fell
// behind, as opposed to Unlisten or Close. Only meaningful once Events
// is closed.
func (l *Listener) Dropped() bool {
	return l.dropped
}

// Feed keeps the most recent entity events in a ring and fans new ones out
// to live listeners.
type Feed struct {
	mu        sync.Mutex
	ring      []domain.EntityEvent
	next      int
	count     int
	listeners map[*Listener]struct{}
}

// NewFeed creates a feed holding up to size events.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultSize
	}
	return &Feed{
		ring:      make([]domain.EntityEvent, size),
		listeners: make(map[*Listener]struct{}),
	}
}

// Start consumes EntityActivity events from the bus until ctx is done.
func (f *Feed) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return pubsub.Subscribe(ctx, sub, pubsub.EntityActivity, func(_ context.Context, ev domain.EntityEvent) error {
		f.Add(ev)
		return nil
	})
}

// Add records an event and delivers it to every listener.
func (f *Feed) Add(ev domain.EntityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ring[f.next] = ev
	f.next = (f.next + 1) % len(f.ring)
	if f.count < len(f.ring) {
		f.count++
	}

	for l := range f.listeners {
		select {
		case l.Events <- ev:
		default:
			delete(f.listeners, l)
			l.dropped = true
			close(l.Events)
			slog.Warn("Dropping slow activity listener", "listeners", len(f.listeners))
		}
	}
}

// Recent returns up to limit events, newest first. A limit of zero or less
// returns everything held.
func (f *Feed) Recent(limit int) []domain.EntityEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit <= 0 || limit > f.count {
		limit = f.count
	}
	out := make([]domain.EntityEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.ring)) % len(f.ring)
		out = append(out, f.ring[idx])
	}
	return out
}

// Listen registers a live listener.
func (f *Feed) Listen() *Listener {
	l := &Listener{Events: make(chan domain.EntityEvent, listenerBuffer)}
	f.mu.Lock()
	f.listeners[l] = struct{}{}
	f.mu.Unlock()
	return l
}

// Unlisten removes a listener and closes its channel. It is safe to call
// for a listener that was already dropped.
func (f *Feed) Unlisten(l *Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listeners[l]; ok {
		delete(f.listeners, l)
		close(l.Events)
	}
}

// Listeners returns the number of live listeners.
func (f *Feed) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Close removes every listener.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for l := range f.listeners {
		delete(f.listeners, l)
		close(l.Events)
	}
}
