// Package config provides configuration types for the ReuseMart client.
//
// Configuration is file-based (reusemart.yaml) with environment overrides.
// Every field has a default, so the client runs without a config file
// against the production backend.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://dashboard.reusemart.site/api"

// DevBaseURL is the local Laravel development server.
const DevBaseURL = "http://127.0.0.1:8000/api"

// Config is the top-level client configuration.
type Config struct {
	// Backend locates the marketplace API.
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Retry controls retries of idempotent GET requests.
	Retry RetryConfig `yaml:"retry" mapstructure:"retry"`

	// Store selects where the session is persisted.
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// DevMode points the client at the local backend and enables debug logs.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// BackendConfig locates the backend API.
type BackendConfig struct {
	// BaseURL is the API root, e.g. "https://dashboard.reusemart.site/api".
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout bounds each request (e.g. "15s"). Default: "15s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"duration"`

	// Areas overrides the base URL of individual areas (auth, pembeli,
	// penitip, kurir, hunter, profile, catalog, notifications, merchandise)
	// for deployments that split hosts.
	Areas map[string]string `yaml:"areas" mapstructure:"areas" validate:"omitempty,dive,keys,area,endkeys,url"`
}

// RetryConfig controls GET retries. Mutating requests are never retried.
type RetryConfig struct {
	// MaxAttempts is the total number of tries including the first.
	// Default: 3.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"min=1,max=10"`
	// BaseDelay is the first backoff delay; it doubles per retry.
	// Default: "200ms".
	BaseDelay string `yaml:"base_delay" mapstructure:"base_delay" validate:"duration"`
	// MaxDelay caps a single backoff delay. Default: "2s".
	MaxDelay string `yaml:"max_delay" mapstructure:"max_delay" validate:"duration"`
}

// StoreConfig selects the credential store.
type StoreConfig struct {
	// Driver is file, sqlite or memory. Default: file.
	Driver string `yaml:"driver" mapstructure:"driver" validate:"oneof=file sqlite memory"`
	// Path is the credentials file or database. Ignored for memory.
	// Default: $HOME/.reusemart/credentials.json (credentials.db for sqlite).
	Path string `yaml:"path" mapstructure:"path"`
}

// TimeoutDuration returns the parsed request timeout.
func (c BackendConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout)
}

// BaseDelayDuration returns the parsed first backoff delay.
func (c RetryConfig) BaseDelayDuration() time.Duration {
	return parseDuration(c.BaseDelay)
}

// MaxDelayDuration returns the parsed backoff cap.
func (c RetryConfig) MaxDelayDuration() time.Duration {
	return parseDuration(c.MaxDelay)
}

// parseDuration returns 0 for values Validate would reject.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// SetDevDefaults applies development overrides. Applied after SetDefaults
// and before validation.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.LogLevel = "debug"
	if c.Backend.BaseURL == DefaultBaseURL {
		c.Backend.BaseURL = DevBaseURL
	}
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBaseURL
	}
	if c.Backend.Timeout == "" {
		c.Backend.Timeout = "15s"
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == "" {
		c.Retry.BaseDelay = "200ms"
	}
	if c.Retry.MaxDelay == "" {
		c.Retry.MaxDelay = "2s"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "file"
	}
	if c.Store.Path == "" && c.Store.Driver != "memory" {
		c.Store.Path = defaultStorePath(c.Store.Driver)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// defaultStorePath keeps credentials under the user's home so they survive
// running the client from another directory.
func defaultStorePath(driver string) string {
	name := "credentials.json"
	if driver == "sqlite" {
		name = "credentials.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".reusemart", name)
}
