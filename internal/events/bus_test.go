package events_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anspacker/internal/events"
)

type collector struct {
	mu     sync.Mutex
	events []events.Event
	got    chan struct{}
}

func newCollector() *collector {
	return &collector{got: make(chan struct{}, 16)}
}

func (c *collector) handler(id string) events.HandlerFunc {
	return events.HandlerFunc{ID: id, Fn: func(e events.Event) {
		c.mu.Lock()
		c.events = append(c.events, e)
		c.mu.Unlock()
		c.got <- struct{}{}
	}}
}

func (c *collector) waitFor(t *testing.T, n int) []events.Event {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}

func TestBus_DeliversInOrder(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Shutdown()

	c := newCollector()
	bus.Subscribe(events.RunStarted, c.handler("a"))
	bus.Subscribe(events.RunSucceeded, c.handler("a"))

	bus.Publish(events.Event{Type: events.RunStarted, RunID: "1"})
	bus.Publish(events.Event{Type: events.RunSucceeded, RunID: "1"})

	got := c.waitFor(t, 2)
	require.Len(t, got, 2)
	assert.Equal(t, events.RunStarted, got[0].Type)
	assert.Equal(t, events.RunSucceeded, got[1].Type)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Shutdown()

	removed := newCollector()
	kept := newCollector()
	bus.Subscribe(events.RunFailed, removed.handler("removed"))
	bus.Subscribe(events.RunFailed, kept.handler("kept"))
	bus.Unsubscribe(events.RunFailed, removed.handler("removed"))

	bus.Publish(events.Event{Type: events.RunFailed})

	kept.waitFor(t, 1)
	removed.mu.Lock()
	defer removed.mu.Unlock()
	assert.Empty(t, removed.events)
}

func TestBus_PanickingHandlerDoesNotStopDispatch(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Shutdown()

	c := newCollector()
	bus.Subscribe(events.RunStopped, events.HandlerFunc{ID: "boom", Fn: func(events.Event) { panic("boom") }})
	bus.Subscribe(events.RunStopped, c.handler("ok"))

	bus.Publish(events.Event{Type: events.RunStopped})

	c.waitFor(t, 1)
}

func TestBus_PublishAfterShutdownIsDropped(t *testing.T) {
	bus := events.NewBus(1)
	bus.Shutdown()
	bus.Shutdown()

	assert.NotPanics(t, func() {
		bus.Publish(events.Event{Type: events.RunStarted})
	})
}
