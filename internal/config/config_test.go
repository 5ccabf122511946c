package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLINIC_API_URL", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.ListLimit != 100 {
		t.Errorf("expected default list limit 100, got %d", cfg.ListLimit)
	}
	if cfg.SandboxPort != "8090" {
		t.Errorf("expected default sandbox port 8090, got %s", cfg.SandboxPort)
	}
	if cfg.SandboxSeed != 42 {
		t.Errorf("expected default seed 42, got %d", cfg.SandboxSeed)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CLINIC_API_URL", "https://clinic.example.com/api")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("LIST_LIMIT", "25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClinicAPIURL != "https://clinic.example.com/api" {
		t.Errorf("CLINIC_API_URL = %s", cfg.ClinicAPIURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("REQUEST_TIMEOUT = %s, want 3s", cfg.RequestTimeout)
	}
	if cfg.ListLimit != 25 {
		t.Errorf("LIST_LIMIT = %d, want 25", cfg.ListLimit)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("Level() = %s, want debug", cfg.Level())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_LevelFallsBackToInfo(t *testing.T) {
	for _, v := range []string{"", "loud"} {
		c := &Config{LogLevel: v}
		if c.Level() != zerolog.InfoLevel {
			t.Errorf("Level(%q) = %s, want info", v, c.Level())
		}
	}
}

func validConfig() Config {
	return Config{
		ClinicAPIURL:   "http://localhost:8090",
		Env:            "development",
		LogLevel:       "info",
		RequestTimeout: 10 * time.Second,
		ListLimit:      100,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no scheme", func(c *Config) { c.ClinicAPIURL = "localhost:8090" }, true},
		{"ftp scheme", func(c *Config) { c.ClinicAPIURL = "ftp://clinic" }, true},
		{"no host", func(c *Config) { c.ClinicAPIURL = "http://" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"zero limit", func(c *Config) { c.ListLimit = 0 }, true},
		{"huge limit", func(c *Config) { c.ListLimit = 5000 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"query in url", func(c *Config) { c.ClinicAPIURL = "https://functions.example.net/abc?tenant=1" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
