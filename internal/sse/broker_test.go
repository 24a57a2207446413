package sse

import (
	"context"
	"testing"
	"time"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedBroker(t *testing.T) Broker {
	t.Helper()

	broker := NewBroker()
	broker.Start(context.Background())
	t.Cleanup(broker.Stop)
	return broker
}

func receiveEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()

	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroker_BroadcastsToAllSubscribers(t *testing.T) {
	broker := startedBroker(t)

	first, cleanupFirst := broker.Subscribe(context.Background())
	defer cleanupFirst()
	second, cleanupSecond := broker.Subscribe(context.Background())
	defer cleanupSecond()

	threat := &models.Threat{ID: 1, Title: "Broadcast me"}
	require.NoError(t, broker.Publish(NewThreatEvent(threat)))

	// Every subscriber gets its own copy of the event
	for _, events := range []<-chan Event{first, second} {
		event := receiveEvent(t, events)
		assert.Equal(t, EventTypeThreat, event.Type)
		assert.Equal(t, threat, event.Data)
	}
}

func TestBroker_CleanupRemovesSubscriber(t *testing.T) {
	broker := startedBroker(t)

	_, cleanup := broker.Subscribe(context.Background())
	require.Equal(t, 1, broker.ClientCount())

	cleanup()
	assert.Equal(t, 0, broker.ClientCount())
}

func TestBroker_ContextCancellationRemovesSubscriber(t *testing.T) {
	broker := startedBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	events, _ := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.ClientCount())

	cancel()

	assert.Eventually(t, func() bool { return broker.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	// The subscriber channel is closed on removal
	_, open := <-events
	assert.False(t, open)
}

func TestBroker_StopDisconnectsSubscribers(t *testing.T) {
	broker := NewBroker()
	broker.Start(context.Background())

	events, _ := broker.Subscribe(context.Background())
	broker.Stop()

	assert.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestBroker_PublishDoesNotBlock(t *testing.T) {
	broker := startedBroker(t)

	// No subscribers; the publish buffer absorbs events without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = broker.Publish(Event{Type: EventTypeThreat, Data: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked the caller")
	}
}
