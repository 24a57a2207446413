package sse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// broker implements the Broker interface.
type broker struct {
	clients map[string]*client
	mu      sync.RWMutex

	publish chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	clientBufferSize int
	shutdownTimeout  time.Duration
}

// NewBroker creates a new notification broker.
func NewBroker() Broker {
	return &broker{
		clients:          make(map[string]*client),
		publish:          make(chan Event, DefaultEventBufferSize),
		clientBufferSize: DefaultClientBufferSize,
		shutdownTimeout:  DefaultShutdownTimeout,
	}
}

// Start begins distributing published events to subscribers.
func (b *broker) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(1)
	go b.broadcastLoop()

	logrus.Info("Notification broker started")
}

// Stop gracefully shuts down the broker and disconnects all subscribers.
func (b *broker) Stop() {
	if b.cancel != nil {
		b.cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("Notification broker stopped")
	case <-time.After(b.shutdownTimeout):
		logrus.Warn("Notification broker shutdown timeout exceeded")
	}
}

// Publish sends an event to all connected subscribers. It never blocks the
// discovery pipeline; if the publish buffer is full the event is dropped
// with an error.
func (b *broker) Publish(event Event) error {
	select {
	case b.publish <- event:
		return nil
	default:
		return fmt.Errorf("publish buffer full (dropped event: %s)", event.Type)
	}
}

// Subscribe registers a new stream subscriber.
func (b *broker) Subscribe(ctx context.Context) (<-chan Event, func()) {
	c := newClient(ctx, b.clientBufferSize)

	b.mu.Lock()
	b.clients[c.id] = c
	b.mu.Unlock()

	logrus.Debugf("Stream client %s subscribed (%d total)", c.id, b.ClientCount())

	// Remove the client when its context is cancelled
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		<-c.ctx.Done()
		b.removeClient(c.id)
	}()

	return c.events, func() { b.removeClient(c.id) }
}

// ClientCount returns the number of connected subscribers.
func (b *broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *broker) broadcastLoop() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.publish:
			b.broadcast(event)
		case <-b.ctx.Done():
			b.disconnectAllClients()
			return
		}
	}
}

// broadcast delivers an event to every subscriber, evicting any whose
// buffer is full.
func (b *broker) broadcast(event Event) {
	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		if !c.send(event) {
			logrus.Warnf("Stream client %s buffer full, closing slow connection", c.id)
			b.removeClient(c.id)
		}
	}
}

func (b *broker) removeClient(clientID string) {
	b.mu.Lock()
	c, exists := b.clients[clientID]
	if exists {
		delete(b.clients, clientID)
	}
	b.mu.Unlock()

	if exists {
		c.close()
		logrus.Debugf("Stream client %s disconnected (%d total)", clientID, b.ClientCount())
	}
}

func (b *broker) disconnectAllClients() {
	b.mu.Lock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.clients = make(map[string]*client)
	b.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
