// Package sse provides the in-process broadcast channel that feeds the
// live notification stream. Every subscriber gets its own buffered channel;
// a published event is delivered to all of them.
package sse

import (
	"context"
	"time"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
)

// Event represents a Server-Sent Event.
// Format: event: <Type>\ndata: <JSON payload>\n\n
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventTypeThreat is emitted once per newly persisted threat.
const EventTypeThreat = "threat:new"

// Default configuration values.
const (
	DefaultEventBufferSize   = 1024
	DefaultClientBufferSize  = 256
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Publisher sends events to the broker.
type Publisher interface {
	// Publish sends an event to all connected clients without blocking the
	// caller. Returns an error if the publish buffer is full.
	Publish(event Event) error
}

// Broker manages stream subscriptions and event distribution.
type Broker interface {
	Publisher
	// Subscribe returns a channel that receives every published event. The
	// channel is closed when the subscription ends (client disconnect or
	// broker shutdown); cleanup must be called when the subscriber is done.
	Subscribe(ctx context.Context) (events <-chan Event, cleanup func())
	// Start begins distributing events (non-blocking).
	Start(ctx context.Context)
	// Stop gracefully shuts down the broker.
	Stop()
	// ClientCount returns the number of connected subscribers.
	ClientCount() int
}

// NewThreatEvent wraps a persisted threat for delivery to stream subscribers.
func NewThreatEvent(threat *models.Threat) Event {
	return Event{
		Type: EventTypeThreat,
		Data: threat,
	}
}
