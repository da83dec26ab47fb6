package capture

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader delivers its payload in fixed-size reads, the way a pipe can.
type chunkReader struct {
	data  []byte
	chunk int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := min(c.chunk, len(c.data), len(p))
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestPumpPCMRealignsOddSizedReads(t *testing.T) {
	// A recognizable ramp: any byte shift would scramble the decoded samples.
	var stream []byte
	for i := range 100 {
		stream = binary.LittleEndian.AppendUint16(stream, uint16(i*300)) //nolint:gosec // test values fit
	}

	var got []byte
	buf := make([]byte, 16)
	pumpPCM(&chunkReader{data: append([]byte(nil), stream...), chunk: 7}, buf, func(b []byte, n int) bool {
		require.Zero(t, n%2, "sink only ever sees whole samples")
		got = append(got, b[:n]...)
		return true
	})

	assert.Equal(t, stream, got)
}

func TestPumpPCMSingleByteReads(t *testing.T) {
	stream := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

	var got []byte
	buf := make([]byte, 8)
	pumpPCM(&chunkReader{data: append([]byte(nil), stream...), chunk: 1}, buf, func(b []byte, n int) bool {
		got = append(got, b[:n]...)
		return true
	})

	assert.Equal(t, stream, got)
}

func TestPumpPCMStopsWhenSinkDeclines(t *testing.T) {
	stream := make([]byte, 64)

	calls := 0
	buf := make([]byte, 16)
	pumpPCM(&chunkReader{data: stream, chunk: 16}, buf, func([]byte, int) bool {
		calls++
		return false
	})

	assert.Equal(t, 1, calls)
}
