package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Resilience.Retry.MaxAttempts)
}

func TestLoadAppliesFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
environment: production
server:
  port: 9090
  request_timeout: 30s
store:
  driver: dynamodb
  table_name: ledgerchat-prod
model:
  provider: mock
resilience:
  rate_limit:
    window: 10s
    max_requests: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.Environment)
	// Environment wins over the file.
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "dynamodb", cfg.Store.Driver)
	assert.Equal(t, "ledgerchat-prod", cfg.Store.TableName)
	assert.Equal(t, "mock", cfg.Model.Provider)
	assert.Equal(t, "sk-test", cfg.Model.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Resilience.RateLimit.Window)
	assert.Equal(t, 5, cfg.Resilience.RateLimit.MaxRequests)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3, cfg.Resilience.Retry.MaxAttempts)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEventBusEnvEnablesEvents(t *testing.T) {
	t.Setenv("EVENT_BUS_NAME", "prod-bus")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "prod-bus", cfg.Events.EventBusName)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown store driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"dynamodb without table", func(c *Config) { c.Store.Driver = "dynamodb"; c.Store.TableName = "" }},
		{"unknown provider", func(c *Config) { c.Model.Provider = "llama" }},
		{"zero retry attempts", func(c *Config) { c.Resilience.Retry.MaxAttempts = 0 }},
		{"zero rate limit", func(c *Config) { c.Resilience.RateLimit.MaxRequests = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
