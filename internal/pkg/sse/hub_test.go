package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishDeliversToTopicOnly(t *testing.T) {
	hub := NewHub()
	display, cleanupDisplay := hub.Subscribe(TopicQRDisplay)
	defer cleanupDisplay()
	userCh, cleanupUser := hub.Subscribe("user-1")
	defer cleanupUser()

	hub.Publish(TopicQRDisplay, Event{Topic: TopicQRDisplay, Event: "qr_token", Data: "abc"})

	select {
	case ev := <-display:
		assert.Equal(t, "qr_token", ev.Event)
		assert.Equal(t, "abc", ev.Data)
	default:
		t.Fatal("display subscriber did not receive event")
	}
	assert.Len(t, userCh, 0)
}

func TestHub_PublishIsNonBlockingWhenFull(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	for i := 0; i < 25; i++ {
		hub.Publish("user-1", Event{Event: "notification", Data: i})
	}

	assert.Len(t, ch, cap(ch))
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	_, cleanup1 := hub.Subscribe("user-1")
	ch2, cleanup2 := hub.Subscribe("user-1")

	require.Equal(t, 2, hub.SubscriberCount("user-1"))

	cleanup1()
	cleanup1()
	assert.Equal(t, 1, hub.SubscriberCount("user-1"))

	cleanup2()
	_, open := <-ch2
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("user-1"))
}
