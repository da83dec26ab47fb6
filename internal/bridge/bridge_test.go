package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeDeliversInOrder(t *testing.T) {
	b := NewWithCapacity(4)

	assert.True(t, b.TrySend(true))
	assert.True(t, b.TrySend(false))
	assert.True(t, b.TrySend(true))

	assert.True(t, <-b.Events())
	assert.False(t, <-b.Events())
	assert.True(t, <-b.Events())
}

func TestBridgeDropsWhenFull(t *testing.T) {
	b := NewWithCapacity(2)

	assert.True(t, b.TrySend(true))
	assert.True(t, b.TrySend(true))
	assert.False(t, b.TrySend(false), "send into a full buffer drops")

	// Buffered events survive the drop.
	assert.True(t, <-b.Events())
	assert.True(t, <-b.Events())
}

func TestBridgeTrySendAfterClose(t *testing.T) {
	b := New()
	b.Close()

	// Must not panic on the closed channel.
	assert.False(t, b.TrySend(true))
}

func TestBridgeCloseIsIdempotent(t *testing.T) {
	b := New()
	b.Close()
	assert.NotPanics(t, func() { b.Close() })
}

func TestBridgeCloseDeliversPendingEvents(t *testing.T) {
	b := NewWithCapacity(2)
	b.TrySend(true)
	b.Close()

	v, ok := <-b.Events()
	require.True(t, ok)
	assert.True(t, v)

	_, ok = <-b.Events()
	assert.False(t, ok, "channel closed after pending events drain")
}

func TestBridgeMinimumCapacity(t *testing.T) {
	b := NewWithCapacity(0)
	assert.True(t, b.TrySend(true), "capacity is clamped to at least one slot")
}
