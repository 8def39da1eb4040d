package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 100_000, cfg.MaxSimulations)
	assert.Empty(t, cfg.TaxServiceURL)
	assert.Equal(t, 10*time.Second, cfg.TaxServiceTimeout)
	assert.Equal(t, 3, cfg.TaxServiceRetries)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
workers: 8
max_simulations: 50000
tax_service_url: "http://taxes.internal:7000"
tax_service_timeout: 30s
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 50000, cfg.MaxSimulations)
	assert.Equal(t, "http://taxes.internal:7000", cfg.TaxServiceURL)
	assert.Equal(t, 30*time.Second, cfg.TaxServiceTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3, cfg.TaxServiceRetries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 8\naddr: \":9090\"\n"), 0o644))

	t.Setenv("FINSIM_WORKERS", "2")
	t.Setenv("FINSIM_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers, "env wins over file")
	assert.Equal(t, ":9090", cfg.Addr, "file wins over defaults")
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o644))

	t.Setenv("FINSIM_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"negative cap", func(c *Config) { c.MaxSimulations = -1 }},
		{"zero timeout", func(c *Config) { c.TaxServiceTimeout = 0 }},
		{"negative retries", func(c *Config) { c.TaxServiceRetries = -1 }},
		{"negative cache", func(c *Config) { c.TaxCacheSize = -1 }},
		{"zero shutdown", func(c *Config) { c.ShutdownTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
