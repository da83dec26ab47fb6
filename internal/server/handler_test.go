package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func command(t *testing.T, cmdType, data string) WSCommand {
	t.Helper()
	return WSCommand{Type: cmdType, Data: json.RawMessage(data)}
}

func drain(send chan any) any {
	select {
	case msg := <-send:
		return msg
	default:
		return nil
	}
}

func TestDecodeAndValidate(t *testing.T) {
	send := make(chan any, 4)

	var req DetectorUpdateRequest
	ok := DecodeAndValidate(command(t, "detector/update", `{"threshold":0.5}`), send, &req)
	assert.True(t, ok)
	require.NotNil(t, req.Threshold)
	assert.Equal(t, 0.5, *req.Threshold)
	assert.Nil(t, req.DeadbandFactor)
	assert.Nil(t, drain(send))
}

func TestDecodeAndValidateRejectsBadJSON(t *testing.T) {
	send := make(chan any, 4)

	var req DetectorUpdateRequest
	ok := DecodeAndValidate(command(t, "detector/update", `{not json`), send, &req)
	assert.False(t, ok)

	msg, isMap := drain(send).(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "detector/update_result", msg["type"])
	assert.Equal(t, false, msg["success"])
}

func TestDecodeAndValidateRangeChecks(t *testing.T) {
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{"threshold zero is valid", `{"threshold":0}`, true},
		{"threshold one is valid", `{"threshold":1}`, true},
		{"threshold above one", `{"threshold":1.5}`, false},
		{"negative threshold", `{"threshold":-0.1}`, false},
		{"deadband above one", `{"deadband_factor":1.2}`, false},
		{"empty update is valid", `{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send := make(chan any, 4)
			var req DetectorUpdateRequest
			assert.Equal(t, tt.ok, DecodeAndValidate(command(t, "detector/update", tt.data), send, &req))
		})
	}
}

func TestDeadAirUpdateRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{"valid", `{"threshold_db":-40,"duration_ms":15000,"recovery_ms":5000}`, true},
		{"threshold above zero", `{"threshold_db":5}`, false},
		{"threshold below floor", `{"threshold_db":-80}`, false},
		{"duration too short", `{"duration_ms":100}`, false},
		{"recovery too long", `{"recovery_ms":600000}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send := make(chan any, 4)
			var req DeadAirUpdateRequest
			assert.Equal(t, tt.ok, DecodeAndValidate(command(t, "deadair/update", tt.data), send, &req))
		})
	}
}

func TestValidationErrorUsesJSONFieldNames(t *testing.T) {
	send := make(chan any, 4)

	var req DeadAirUpdateRequest
	ok := DecodeAndValidate(command(t, "deadair/update", `{"threshold_db":99}`), send, &req)
	require.False(t, ok)

	msg, isMap := drain(send).(map[string]any)
	require.True(t, isMap)

	// The error payload must reference the JSON tag, not the Go field name.
	raw, err := json.Marshal(msg["error"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "threshold_db")
	assert.NotContains(t, string(raw), "ThresholdDB")
}

func TestSendSuccessAndError(t *testing.T) {
	send := make(chan any, 4)

	SendSuccess(send, "audio/update", map[string]any{"input": "hw:0"})
	msg, _ := drain(send).(map[string]any)
	require.NotNil(t, msg)
	assert.Equal(t, "audio/update_result", msg["type"])
	assert.Equal(t, true, msg["success"])

	SendError(send, "audio/update", assert.AnError)
	msg, _ = drain(send).(map[string]any)
	require.NotNil(t, msg)
	assert.Equal(t, false, msg["success"])
	assert.NotEmpty(t, msg["error"])
}
