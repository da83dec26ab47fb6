package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "1.2.3", normalizeVersion("v1.2.3"))
	assert.Equal(t, "1.2.3", normalizeVersion(" 1.2.3 "))
	assert.Equal(t, "dev", normalizeVersion("dev"))
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		latest  string
		current string
		want    bool
	}{
		{"1.2.4", "1.2.3", true},
		{"2.0.0", "1.9.9", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.2", "1.2.3", false},
		{"v1.3.0", "1.2.3", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isNewerVersion(tt.latest, tt.current),
			"latest=%s current=%s", tt.latest, tt.current)
	}
}
