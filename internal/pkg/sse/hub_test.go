package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSessionSubscribers(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("session-a")
	defer cleanup()
	other, cleanupOther := hub.Subscribe("session-b")
	defer cleanupOther()

	hub.Publish("session-a", Event{Event: "overlay_staged", Data: "2024-03-04"})

	select {
	case ev := <-ch:
		assert.Equal(t, "overlay_staged", ev.Event)
		assert.Equal(t, "session-a", ev.SessionID)
	default:
		t.Fatal("expected an event for session-a")
	}

	select {
	case ev := <-other:
		t.Fatalf("unexpected event for session-b: %v", ev)
	default:
	}
}

func TestHub_PublishDoesNotBlockWhenFull(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("session-a")
	defer cleanup()

	for i := 0; i < 25; i++ {
		hub.Publish("session-a", Event{Event: "ping"})
	}
	assert.Equal(t, 1, hub.SubscriberCount("session-a"))
}

func TestHub_CloseThenCleanup(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("session-a")
	require.Equal(t, 1, hub.TotalSubscribers())

	hub.Close("session-a")
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("session-a"))

	// cleanup after Close must not close the channel twice
	assert.NotPanics(t, cleanup)
	assert.Equal(t, 0, hub.TotalSubscribers())
}
