package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateServer(), "secret is required to serve")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TESTDRILL_DB", "/tmp/td.db")
	t.Setenv("TESTDRILL_ADDR", "127.0.0.1:9000")
	t.Setenv("TESTDRILL_JWT_SECRET", "s3cret")
	t.Setenv("TESTDRILL_REQUEST_TIMEOUT", "2s")
	t.Setenv("TESTDRILL_LOG_LEVEL", "debug")
	t.Setenv("TESTDRILL_LOG_FORMAT", "json")

	cfg := ConfigFromEnv()
	assert.Equal(t, "/tmp/td.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.ValidateServer())
}

func TestConfigFromEnvRejectsBadTimeout(t *testing.T) {
	t.Setenv("TESTDRILL_REQUEST_TIMEOUT", "soon")
	cfg := ConfigFromEnv()
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TESTDRILL_REQUEST_TIMEOUT")
	assert.Error(t, cfg.ValidateServer())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"timeout", func(c *Config) { c.Server.RequestTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TESTDRILL_ADDR=:7070\nTESTDRILL_LOG_LEVEL=warn\n"), 0o600))

	// Existing variables win over the file.
	t.Setenv("TESTDRILL_LOG_LEVEL", "error")
	t.Setenv("TESTDRILL_ADDR", "")
	os.Unsetenv("TESTDRILL_ADDR")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { os.Unsetenv("TESTDRILL_ADDR") })

	cfg := ConfigFromEnv()
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "error", cfg.Log.Level)
}
