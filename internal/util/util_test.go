package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{45000, "45s"},
		{59999, "59s"},
		{60000, "1m 0s"},
		{154000, "2m 34s"},
		{3600000, "1h 0m"},
		{4980000, "1h 23m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.ms), "FormatDuration(%d)", tt.ms)
	}
}

func TestFormatHumanTime(t *testing.T) {
	assert.Equal(t, "unknown", FormatHumanTime(""))
	assert.Equal(t, "unknown", FormatHumanTime("unknown"))
	assert.Equal(t, "garbage", FormatHumanTime("garbage"), "unparseable input passes through")
	assert.NotEmpty(t, FormatHumanTime("2025-06-01T12:00:00Z"))
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, IsConfigured("a"))
	assert.True(t, IsConfigured("a", "b"))
	assert.False(t, IsConfigured(""))
	assert.False(t, IsConfigured("a", ""))
	assert.True(t, IsConfigured(), "vacuously true with no values")
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("log_path", "/var/log/avatar/alerts.log"))
	assert.Error(t, ValidatePath("log_path", ""))
	assert.Error(t, ValidatePath("log_path", "../etc/passwd"))
	assert.Error(t, ValidatePath("log_path", "/var/log/../../etc/passwd"))
}

func TestWrapError(t *testing.T) {
	base := errors.New("boom")
	err := WrapError("read config", base)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to read config: boom", err.Error())
}

func TestExtractLastError(t *testing.T) {
	assert.Equal(t, "", ExtractLastError(""))
	assert.Equal(t, "last line", ExtractLastError("first line\nlast line\n"))
}

func TestDarkenColor(t *testing.T) {
	assert.Equal(t, "#000000", DarkenColor("#000000", 10))
	assert.Equal(t, "#E6007E", DarkenColor("#E6007E", 0))
	assert.Equal(t, "not-a-color", DarkenColor("not-a-color", 10), "invalid input passes through")

	darkened := DarkenColor("#FFFFFF", 50)
	assert.Equal(t, "#7F7F7F", darkened)
}

func TestGenerateBrandCSS(t *testing.T) {
	css := GenerateBrandCSS("#E6007E", "#FF66B8")
	assert.Contains(t, css, "--brand-light:#E6007E")
	assert.Contains(t, css, "--brand-dark:#FF66B8")
	assert.Contains(t, css, "prefers-color-scheme:dark")
}
