package eventlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avatar.jsonl")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })
	return logger, path
}

func TestLogCaptureAndReadBack(t *testing.T) {
	logger, path := newTestLogger(t)

	require.NoError(t, logger.LogCapture(CaptureStarted, "hw:0", "", "", 0, 10))
	require.NoError(t, logger.LogCapture(CaptureError, "hw:0", "", "device busy", 2, 10))

	events, hasMore, err := ReadLast(path, 10, 0, FilterAll)
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, CaptureError, events[0].Type)
	assert.Equal(t, CaptureStarted, events[1].Type)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestLogDeadAirEvents(t *testing.T) {
	logger, path := newTestLogger(t)

	require.NoError(t, logger.LogDeadAirStart(-52.3, -40))
	require.NoError(t, logger.LogDeadAirEnd(18000, -20.1, -40))

	events, _, err := ReadLast(path, 10, 0, FilterDeadAir)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, DeadAirEnd, events[0].Type)
	assert.Equal(t, DeadAirStart, events[1].Type)
}

func TestReadLastFilter(t *testing.T) {
	logger, path := newTestLogger(t)

	require.NoError(t, logger.LogCapture(CaptureStarted, "hw:0", "", "", 0, 10))
	require.NoError(t, logger.LogDeadAirStart(-50, -40))
	require.NoError(t, logger.LogCapture(CaptureStopped, "hw:0", "", "", 0, 10))

	capture, _, err := ReadLast(path, 10, 0, FilterCapture)
	require.NoError(t, err)
	assert.Len(t, capture, 2)

	deadAir, _, err := ReadLast(path, 10, 0, FilterDeadAir)
	require.NoError(t, err)
	assert.Len(t, deadAir, 1)
}

func TestReadLastPagination(t *testing.T) {
	logger, path := newTestLogger(t)

	for range 5 {
		require.NoError(t, logger.LogDeadAirStart(-50, -40))
	}

	page, hasMore, err := ReadLast(path, 2, 0, FilterAll)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.True(t, hasMore)

	page, hasMore, err = ReadLast(path, 2, 4, FilterAll)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.False(t, hasMore)
}

func TestReadLastMissingFile(t *testing.T) {
	events, hasMore, err := ReadLast(filepath.Join(t.TempDir(), "none.jsonl"), 10, 0, FilterAll)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.False(t, hasMore)
}

func TestReadLastCapsLimit(t *testing.T) {
	logger, path := newTestLogger(t)
	require.NoError(t, logger.LogDeadAirStart(-50, -40))

	events, _, err := ReadLast(path, MaxReadLimit+100, 0, FilterAll)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, _, err = ReadLast(path, 0, 0, FilterAll)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventTypePredicates(t *testing.T) {
	assert.True(t, IsCaptureEvent(CaptureRetry))
	assert.False(t, IsCaptureEvent(DeadAirStart))
	assert.True(t, IsDeadAirEvent(DeadAirEnd))
	assert.False(t, IsDeadAirEvent(CaptureStable))
}
