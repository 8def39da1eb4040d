// Package config loads runtime configuration and household scenario
// files. Runtime settings layer hard-coded defaults, an optional YAML
// file, and FINSIM_-prefixed environment variables; scenarios are plain
// YAML documents unmarshaled into the domain input.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment overrides, e.g. FINSIM_ADDR.
const EnvPrefix = "FINSIM_"

// Config holds process-level settings. Scenario inputs never live
// here; they arrive per run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr is the HTTP listen address for serve, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Workers sizes the simulation worker pool; 0 means one per CPU.
	Workers int `koanf:"workers"`

	// MaxSimulations caps n_simulations per run; 0 means uncapped.
	MaxSimulations int `koanf:"max_simulations"`

	// TaxServiceURL points at an external tax service. Empty selects
	// the in-process bracket engine.
	TaxServiceURL string `koanf:"tax_service_url"`

	// TaxServiceTimeout bounds each tax service HTTP call.
	TaxServiceTimeout time.Duration `koanf:"tax_service_timeout"`

	// TaxServiceRetries is the retry budget per tax service call.
	TaxServiceRetries int `koanf:"tax_service_retries"`

	// TaxCacheSize bounds the memoized tax responses; 0 uses the
	// built-in default.
	TaxCacheSize int `koanf:"tax_cache_size"`

	// ShutdownTimeout is the grace period for draining the server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8080",
		Workers:           0,
		MaxSimulations:    100_000,
		TaxServiceTimeout: 10 * time.Second,
		TaxServiceRetries: 3,
		ShutdownTimeout:   15 * time.Second,
	}
}

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file at path, or at $FINSIM_CONFIG when path is empty
//  3. environment variables with the FINSIM_ prefix
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// FINSIM_MAX_SIMULATIONS -> max_simulations, matching koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component could run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not text or json", c.LogFormat)
	}
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.MaxSimulations < 0 {
		return fmt.Errorf("max_simulations must not be negative, got %d", c.MaxSimulations)
	}
	if c.TaxServiceTimeout <= 0 {
		return fmt.Errorf("tax_service_timeout must be positive, got %s", c.TaxServiceTimeout)
	}
	if c.TaxServiceRetries < 0 {
		return fmt.Errorf("tax_service_retries must not be negative, got %d", c.TaxServiceRetries)
	}
	if c.TaxCacheSize < 0 {
		return fmt.Errorf("tax_cache_size must not be negative, got %d", c.TaxCacheSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
