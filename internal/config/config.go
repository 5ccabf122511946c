package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/clinicdesk/clinic-admin/pkg/pagination"
)

type Config struct {
	ClinicAPIURL     string        `mapstructure:"CLINIC_API_URL"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ListLimit        int           `mapstructure:"LIST_LIMIT"`
	SandboxPort      string        `mapstructure:"SANDBOX_PORT"`
	SandboxSeed      int64         `mapstructure:"SANDBOX_SEED"`
	SandboxBodyLimit string        `mapstructure:"SANDBOX_BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("CLINIC_API_URL", "http://localhost:8090")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("LIST_LIMIT", pagination.DefaultLimit)
	v.SetDefault("SANDBOX_PORT", "8090")
	v.SetDefault("SANDBOX_SEED", 42)
	v.SetDefault("SANDBOX_BODY_LIMIT", "64K")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"CLINIC_API_URL", "ENV", "LOG_LEVEL", "REQUEST_TIMEOUT", "LIST_LIMIT",
		"SANDBOX_PORT", "SANDBOX_SEED", "SANDBOX_BODY_LIMIT",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Level returns the zerolog level for LOG_LEVEL. Unknown values fall back
// to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate checks that the configuration can reach the clinic endpoint.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ClinicAPIURL)
	if err != nil {
		return fmt.Errorf("CLINIC_API_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CLINIC_API_URL must use http or https, got %q", c.ClinicAPIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("CLINIC_API_URL must include a host, got %q", c.ClinicAPIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.ListLimit < 1 || c.ListLimit > pagination.MaxLimit {
		return fmt.Errorf("LIST_LIMIT must be between 1 and %d, got %d", pagination.MaxLimit, c.ListLimit)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
		}
	}
	return nil
}
