package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oszuidwest/zwfm-avatar/internal/types"
)

func validGraphConfig() *types.GraphConfig {
	return &types.GraphConfig{
		TenantID:     "12345678-1234-1234-1234-123456789abc",
		ClientID:     "87654321-4321-4321-4321-cba987654321",
		ClientSecret: "secret",
		FromAddress:  "studio@zuidwestfm.nl",
		Recipients:   "techniek@zuidwestfm.nl",
	}
}

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "a@x.nl", []string{"a@x.nl"}},
		{"multiple", "a@x.nl,b@x.nl", []string{"a@x.nl", "b@x.nl"}},
		{"whitespace", " a@x.nl , b@x.nl ", []string{"a@x.nl", "b@x.nl"}},
		{"empty segments", "a@x.nl,,b@x.nl,", []string{"a@x.nl", "b@x.nl"}},
		{"empty string", "", nil},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRecipients(tt.input))
		})
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(validGraphConfig()))

	tests := []struct {
		name   string
		mutate func(*types.GraphConfig)
	}{
		{"missing tenant", func(c *types.GraphConfig) { c.TenantID = "" }},
		{"tenant not a GUID", func(c *types.GraphConfig) { c.TenantID = "not-a-guid" }},
		{"missing client", func(c *types.GraphConfig) { c.ClientID = "" }},
		{"client not a GUID", func(c *types.GraphConfig) { c.ClientID = "abc" }},
		{"missing secret", func(c *types.GraphConfig) { c.ClientSecret = "" }},
		{"missing from address", func(c *types.GraphConfig) { c.FromAddress = "" }},
		{"missing recipients", func(c *types.GraphConfig) { c.Recipients = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validGraphConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, IsConfigured(validGraphConfig()))

	cfg := validGraphConfig()
	cfg.Recipients = ""
	assert.False(t, IsConfigured(cfg))

	assert.False(t, IsConfigured(&types.GraphConfig{}))
}

func TestNewGraphClientValidation(t *testing.T) {
	// GUID format is not enforced at client construction, only presence.
	cfg := &types.GraphConfig{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		FromAddress:  "from@x.nl",
	}
	client, err := NewGraphClient(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, client)

	cfg.FromAddress = ""
	_, err = NewGraphClient(cfg)
	assert.Error(t, err)
}
