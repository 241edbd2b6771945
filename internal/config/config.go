package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the process configuration.
type Config struct {
	// DBPath is the SQLite database file. Empty selects the XDG default.
	DBPath string

	Server ServerConfig
	Log    LogConfig

	// envErr is the first malformed environment value seen by
	// ConfigFromEnv. Validate reports it.
	envErr error
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string // Default: ":8080"

	// JWTSecret verifies HS256 bearer tokens. Required by serve.
	JWTSecret string

	// RequestTimeout bounds each request. Default: 15s.
	RequestTimeout time.Duration
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string // Default: "info"
	Format string // "text" or "json". Default: "text"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) without overriding the environment. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. A malformed value keeps its default and is
// reported by Validate.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("TESTDRILL_DB"); p != "" {
		cfg.DBPath = p
	}

	if a := os.Getenv("TESTDRILL_ADDR"); a != "" {
		cfg.Server.Addr = a
	}
	if s := os.Getenv("TESTDRILL_JWT_SECRET"); s != "" {
		cfg.Server.JWTSecret = s
	}
	if t := os.Getenv("TESTDRILL_REQUEST_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			cfg.envErr = fmt.Errorf("TESTDRILL_REQUEST_TIMEOUT: %w", err)
		} else {
			cfg.Server.RequestTimeout = d
		}
	}

	if l := os.Getenv("TESTDRILL_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	if f := os.Getenv("TESTDRILL_LOG_FORMAT"); f != "" {
		cfg.Log.Format = f
	}

	return cfg
}

// Validate checks the logging settings and the values read from the
// environment.
func (c Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("TESTDRILL_LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("TESTDRILL_LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("TESTDRILL_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// ValidateServer checks the settings required by the HTTP adapter.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.JWTSecret == "" {
		return fmt.Errorf("TESTDRILL_JWT_SECRET is required to serve")
	}
	return nil
}
