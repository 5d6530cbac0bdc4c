// Package seeder orchestrates the import run: it discovers workbook and
// template resources, pipes each sheet through classification and
// projection, reconciles against existing remote entities, and aggregates
// the run outcome.
package seeder

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"fineractseed/pkg/seeder/fineract"
)

// Config is the full seeder configuration, loadable from a TOML file with
// environment-variable overrides for the connection settings.
type Config struct {
	Fineract FineractConfig `toml:"fineract"`
	Retry    RetryConfig    `toml:"retry"`
	Data     DataConfig     `toml:"data"`
	Log      LogConfig      `toml:"log"`

	// DryRun projects and logs payloads without any network calls.
	DryRun bool `toml:"-"`
}

// FineractConfig holds the remote API connection settings.
type FineractConfig struct {
	BaseURL        string `toml:"base_url"`
	Tenant         string `toml:"tenant"`
	AuthType       string `toml:"auth_type"` // "basic" or "token"
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	Token          string `toml:"token"`
	Locale         string `toml:"locale"`
	DateFormat     string `toml:"date_format"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// RetryConfig bounds the upload driver's backoff loop.
type RetryConfig struct {
	MaxAttempts       int     `toml:"max_attempts"`
	InitialIntervalMs int     `toml:"initial_interval_ms"`
	MaxIntervalMs     int     `toml:"max_interval_ms"`
	Multiplier        float64 `toml:"multiplier"`
}

// Policy converts the configured values into the client's retry policy.
func (r RetryConfig) Policy() fineract.RetryPolicy {
	return fineract.RetryPolicy{
		MaxAttempts:     r.MaxAttempts,
		InitialInterval: time.Duration(r.InitialIntervalMs) * time.Millisecond,
		MaxInterval:     time.Duration(r.MaxIntervalMs) * time.Millisecond,
		Multiplier:      r.Multiplier,
	}
}

// DataConfig locates the template files. Workbook templates live in the
// workbook-templates subdirectory of Dir; direct-upload templates live in
// Dir itself.
type DataConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Fineract: FineractConfig{
			BaseURL:        "https://localhost:8443/fineract-provider/api/v1",
			Tenant:         "default",
			AuthType:       "basic",
			Locale:         "en",
			DateFormat:     "dd MMMM yyyy",
			TimeoutSeconds: 30,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialIntervalMs: 1000,
			MaxIntervalMs:     10000,
			Multiplier:        2.0,
		},
		Data: DataConfig{Dir: "data"},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a TOML config file over the defaults. An empty path
// returns the defaults untouched.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment. Values from
// a .env file are picked up here when the caller loads one first.
func (c *Config) ApplyEnv() {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfPresent(&c.Fineract.BaseURL, "FINERACT_URL")
	setIfPresent(&c.Fineract.Tenant, "FINERACT_TENANT")
	setIfPresent(&c.Fineract.AuthType, "FINERACT_AUTH_TYPE")
	setIfPresent(&c.Fineract.Username, "FINERACT_USERNAME")
	setIfPresent(&c.Fineract.Password, "FINERACT_PASSWORD")
	setIfPresent(&c.Fineract.Token, "FINERACT_TOKEN")
}

// Validate checks the settings a run cannot proceed without.
func (c *Config) Validate() error {
	if c.Fineract.BaseURL == "" {
		return errors.New("fineract base_url is required")
	}
	if c.Fineract.Tenant == "" {
		return errors.New("fineract tenant is required")
	}
	switch c.Fineract.AuthType {
	case "basic":
		if c.Fineract.Username == "" || c.Fineract.Password == "" {
			return errors.New("basic auth requires username and password")
		}
	case "token":
		if c.Fineract.Token == "" {
			return errors.New("token auth requires a token")
		}
	default:
		return fmt.Errorf("unknown auth_type %q (must be basic or token)", c.Fineract.AuthType)
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry max_attempts must be at least 1")
	}
	return nil
}

// AuthProvider builds the provider matching the configured auth type.
func (c *Config) AuthProvider() fineract.AuthProvider {
	if c.Fineract.AuthType == "token" {
		return fineract.NewTokenAuth(c.Fineract.Token)
	}
	return fineract.NewBasicAuth(c.Fineract.Username, c.Fineract.Password)
}
