package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(i int) domain.EntityEvent {
	return domain.EntityEvent{Entity: "property", Action: domain.ActionUpdated, ID: fmt.Sprintf("p-%d", i)}
}

func eventIDs(events []domain.EntityEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.ID
	}
	return out
}

func TestFeed_Recent(t *testing.T) {
	f := NewFeed(3)
	assert.Empty(t, f.Recent(10))

	f.Add(event(1))
	f.Add(event(2))
	assert.Equal(t, []string{"p-2", "p-1"}, eventIDs(f.Recent(0)))

	f.Add(event(3))
	f.Add(event(4))
	assert.Equal(t, []string{"p-4", "p-3", "p-2"}, eventIDs(f.Recent(0)), "oldest event is overwritten")
	assert.Equal(t, []string{"p-4"}, eventIDs(f.Recent(1)))
	assert.Len(t, f.Recent(50), 3)
}

func TestNewFeed_DefaultSize(t *testing.T) {
	f := NewFeed(0)
	for i := 0; i < DefaultSize+5; i++ {
		f.Add(event(i))
	}
	assert.Len(t, f.Recent(0), DefaultSize)
}

func TestFeed_Listeners(t *testing.T) {
	f := NewFeed(10)
	l := f.Listen()

	f.Add(event(1))
	select {
	case ev := <-l.Events:
		assert.Equal(t, "p-1", ev.ID)
	default:
		t.Fatal("listener did not receive the event")
	}

	f.Unlisten(l)
	_, open := <-l.Events
	assert.False(t, open)
	f.Unlisten(l)
}

func TestFeed_DropsSlowListener(t *testing.T) {
	f := NewFeed(10)
	slow := f.Listen()

	for i := 0; i < listenerBuffer+1; i++ {
		f.Add(event(i))
	}
	received := 0
	for range slow.Events {
		received++
	}
	assert.Equal(t, listenerBuffer, received)
	assert.True(t, slow.Dropped())
}

func TestFeed_Close(t *testing.T) {
	f := NewFeed(10)
	a, b := f.Listen(), f.Listen()
	f.Close()
	_, openA := <-a.Events
	_, openB := <-b.Events
	assert.False(t, openA)
	assert.False(t, openB)
	assert.False(t, a.Dropped())
	assert.False(t, b.Dropped())
}

func TestFeed_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	f := NewFeed(10)
	require.NoError(t, f.Start(ctx, bus))

	pubsub.Announce(ctx, bus, "development", domain.ActionCreated, "d-1", "Torre Sur")
	require.Eventually(t, func() bool { return len(f.Recent(0)) == 1 }, 2*time.Second, 10*time.Millisecond)

	ev := f.Recent(0)[0]
	assert.Equal(t, "development", ev.Entity)
	assert.Equal(t, "Torre Sur", ev.Label)
	assert.Equal(t, domain.ActionCreated, ev.Action)
}

func TestOriginHosts(t *testing.T) {
	assert.Equal(t, []string{"*"}, originHosts([]string{"http://a.test", "*"}))
	assert.Equal(t, []string{"admin.propdesk.mx", "localhost:5173"},
		originHosts([]string{"https://admin.propdesk.mx", "http://localhost:5173", "::bad"}))
}
