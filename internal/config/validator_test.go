package config

import (
	"strings"
	"testing"
)

func minimalValidConfig() *Config {
	cfg := &Config{Store: StoreConfig{Driver: "memory"}}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	if err := minimalValidConfig().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "empty base url",
			mutate: func(c *Config) { c.Backend.BaseURL = "" },
			want:   "BaseURL is required",
		},
		{
			name:   "base url not a url",
			mutate: func(c *Config) { c.Backend.BaseURL = "dashboard" },
			want:   "BaseURL must be a valid URL",
		},
		{
			name:   "bad timeout",
			mutate: func(c *Config) { c.Backend.Timeout = "fifteen" },
			want:   "Timeout must be a positive duration",
		},
		{
			name:   "negative delay",
			mutate: func(c *Config) { c.Retry.BaseDelay = "-1s" },
			want:   "BaseDelay must be a positive duration",
		},
		{
			name:   "zero attempts",
			mutate: func(c *Config) { c.Retry.MaxAttempts = -1 },
			want:   "MaxAttempts must be at least 1",
		},
		{
			name:   "too many attempts",
			mutate: func(c *Config) { c.Retry.MaxAttempts = 50 },
			want:   "MaxAttempts must be at most 10",
		},
		{
			name:   "max delay below base",
			mutate: func(c *Config) { c.Retry.BaseDelay = "3s"; c.Retry.MaxDelay = "1s" },
			want:   "max_delay must not be shorter than base_delay",
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Store.Driver = "redis" },
			want:   "Driver must be one of: file sqlite memory",
		},
		{
			name:   "file driver without path",
			mutate: func(c *Config) { c.Store.Driver = "file"; c.Store.Path = "" },
			want:   `path is required for driver "file"`,
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.LogLevel = "verbose" },
			want:   "LogLevel must be one of",
		},
		{
			name:   "unknown area",
			mutate: func(c *Config) { c.Backend.Areas = map[string]string{"admin": "http://x/api"} },
			want:   `unknown backend area "admin"`,
		},
		{
			name:   "area override not a url",
			mutate: func(c *Config) { c.Backend.Areas = map[string]string{"kurir": "nope"} },
			want:   "must be a valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := minimalValidConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestValidate_AreaOverrides(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Backend.Areas = map[string]string{
		"auth":        "https://auth.reusemart.site/api",
		"merchandise": "http://127.0.0.1:8001/api",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_ZeroConfig(t *testing.T) {
	t.Parallel()

	var cfg Config
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() on zero config = nil, want error")
	}
	for _, want := range []string{"BaseURL is required", "Driver must be one of"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q, want it to contain %q", err, want)
		}
	}
}
