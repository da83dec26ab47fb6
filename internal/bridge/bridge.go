// Package bridge connects the audio capture goroutine to UI consumers
// without ever blocking the audio path.
package bridge

import (
	"log/slog"
	"sync"
)

// DefaultCapacity is the event buffer size. Activity changes are sparse
// compared to the measurement rate, so a small buffer absorbs consumer lag.
const DefaultCapacity = 64

// Bridge is a single-producer, single-consumer channel for activity state
// changes. Sends never block: when the consumer lags and the buffer fills,
// events are dropped and the consumer catches up on the next state change.
type Bridge struct {
	mu     sync.RWMutex
	events chan bool
	closed bool
}

// New creates a bridge with the default capacity.
func New() *Bridge {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity creates a bridge with the given buffer capacity.
func NewWithCapacity(capacity int) *Bridge {
	if capacity < 1 {
		capacity = 1
	}
	return &Bridge{
		events: make(chan bool, capacity),
	}
}

// TrySend delivers an activity state to the consumer if there is room.
// It returns false when the event was dropped because the buffer is full
// or the bridge is closed. Safe to call after Close.
func (b *Bridge) TrySend(active bool) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false
	}

	select {
	case b.events <- active:
		return true
	default:
		slog.Debug("activity event dropped, consumer lagging", "active", active)
		return false
	}
}

// Events returns the receive side of the bridge. The channel is closed
// when Close is called; pending events are still delivered first.
func (b *Bridge) Events() <-chan bool {
	return b.events
}

// Close shuts the bridge down. Subsequent TrySend calls drop silently.
// Close is idempotent.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
}
