package sse

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var clientIDCounter atomic.Int64

// client represents a single stream subscriber.
type client struct {
	id      string
	events  chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool
	closeMu sync.Mutex
}

func newClient(ctx context.Context, bufferSize int) *client {
	clientCtx, cancel := context.WithCancel(ctx)

	return &client{
		id:     fmt.Sprintf("sse-client-%d-%d", time.Now().UnixNano(), clientIDCounter.Add(1)),
		events: make(chan Event, bufferSize),
		ctx:    clientCtx,
		cancel: cancel,
	}
}

// close terminates the subscription. Safe to call more than once.
func (c *client) close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return
	}

	c.closed.Store(true)
	c.cancel()
	close(c.events)
}

// send attempts to deliver an event to the subscriber.
// Returns false if the buffer is full (slow client).
//
// closeMu serializes send with close: the channel must not be closed
// between the closed check and the select, or the send would panic.
func (c *client) send(event Event) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return false
	}

	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}
