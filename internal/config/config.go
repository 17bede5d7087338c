// Package config provides configuration management for the ledgerchat backend.
// Configuration is read from an optional YAML file, then overridden by
// environment variables, with defaults suitable for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment identifies the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the root configuration object.
type Config struct {
	Environment Environment      `yaml:"environment"`
	Server      ServerConfig     `yaml:"server"`
	Store       StoreConfig      `yaml:"store"`
	Events      EventsConfig     `yaml:"events"`
	Model       ModelConfig      `yaml:"model"`
	Resilience  ResilienceConfig `yaml:"resilience"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StoreConfig holds persistent store settings.
type StoreConfig struct {
	// Driver selects the repository implementation: "dynamodb" or "memory".
	Driver    string `yaml:"driver"`
	TableName string `yaml:"table_name"`
	Region    string `yaml:"region"`
	// Endpoint overrides the DynamoDB endpoint for local development.
	Endpoint string `yaml:"endpoint"`
}

// EventsConfig holds EventBridge publishing settings.
type EventsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	EventBusName string `yaml:"event_bus_name"`
	Source       string `yaml:"source"`
}

// ModelConfig holds model-provider settings.
type ModelConfig struct {
	Provider    string        `yaml:"provider"` // "openai" or "mock"
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"-"` // environment only, never from file
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// ResilienceConfig groups the tunable knobs of the resilience utilities.
// This section is hot-reloadable in development (see watcher.go).
type ResilienceConfig struct {
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Breaker   BreakerConfig   `yaml:"breaker"`
}

// RetryConfig defines retry behavior for outbound calls.
type RetryConfig struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	JitterFactor  float64       `yaml:"jitter_factor"`
}

// RateLimitConfig defines the fixed-window limiter applied per (user, endpoint).
type RateLimitConfig struct {
	Window        time.Duration `yaml:"window"`
	MaxRequests   int           `yaml:"max_requests"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// BreakerConfig defines the circuit breaker guarding the model provider.
type BreakerConfig struct {
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	Cooldown            time.Duration `yaml:"cooldown"`
	HalfOpenMaxRequests uint32        `yaml:"half_open_max_requests"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 60 * time.Second,
		},
		Store: StoreConfig{
			Driver:    "memory",
			TableName: "ledgerchat-dev",
			Region:    "us-east-1",
		},
		Events: EventsConfig{
			Enabled:      false,
			EventBusName: "ledgerchat-events",
			Source:       "ledgerchat.backend",
		},
		Model: ModelConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.2,
			CallTimeout: 30 * time.Second,
		},
		Resilience: ResilienceConfig{
			Retry: RetryConfig{
				MaxAttempts:   3,
				BaseDelay:     200 * time.Millisecond,
				MaxDelay:      5 * time.Second,
				BackoffFactor: 2.0,
				JitterFactor:  0.25,
			},
			RateLimit: RateLimitConfig{
				Window:        time.Minute,
				MaxRequests:   30,
				SweepInterval: 5 * time.Minute,
			},
			Breaker: BreakerConfig{
				ConsecutiveFailures: 5,
				Cooldown:            30 * time.Second,
				HalfOpenMaxRequests: 1,
			},
		},
	}
}

// Load builds the configuration from the optional file at CONFIG_PATH (or the
// given path when non-empty) plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = Environment(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("TABLE_NAME"); v != "" {
		cfg.Store.TableName = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Store.Region = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		cfg.Store.Endpoint = v
	}
	if v := os.Getenv("EVENT_BUS_NAME"); v != "" {
		cfg.Events.EventBusName = v
		cfg.Events.Enabled = true
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("MODEL_PROVIDER"); v != "" {
		cfg.Model.Provider = v
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case "dynamodb", "memory":
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if c.Store.Driver == "dynamodb" && c.Store.TableName == "" {
		return fmt.Errorf("table name is required for the dynamodb driver")
	}
	switch c.Model.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown model provider: %q", c.Model.Provider)
	}
	if c.Resilience.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	if c.Resilience.RateLimit.MaxRequests < 1 {
		return fmt.Errorf("rate limit max requests must be at least 1")
	}
	return nil
}
