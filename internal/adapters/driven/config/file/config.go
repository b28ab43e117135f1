// Package file loads service configuration from a TOML file.
// Configuration lives at ~/.metryx/config.toml unless overridden; a
// missing file yields the defaults.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Secrets   SecretsConfig   `toml:"secrets"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address for the HTTP API.
	Addr string `toml:"addr"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `toml:"path"`
}

// SecretsConfig configures credential encryption.
type SecretsConfig struct {
	// KeyPath is the age identity file used to encrypt credentials.
	KeyPath string `toml:"key_path"`
}

// SchedulerConfig configures automatic extraction.
type SchedulerConfig struct {
	// Enabled turns the scheduler on with the serve command.
	Enabled bool `toml:"enabled"`

	// PollSeconds is how often due sources are checked.
	PollSeconds int `toml:"poll_seconds"`

	// LookbackHours is the trailing extraction window per run.
	LookbackHours int `toml:"lookback_hours"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`
}

// PollInterval returns the scheduler poll interval.
func (s SchedulerConfig) PollInterval() time.Duration {
	return time.Duration(s.PollSeconds) * time.Second
}

// Lookback returns the scheduler extraction window.
func (s SchedulerConfig) Lookback() time.Duration {
	return time.Duration(s.LookbackHours) * time.Hour
}

// DefaultDir returns the default configuration directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".metryx"), nil
}

// Defaults returns the configuration used when no file exists, rooted
// at dir.
func Defaults(dir string) Config {
	return Config{
		Server:   ServerConfig{Addr: "127.0.0.1:8080"},
		Database: DatabaseConfig{Path: filepath.Join(dir, "metryx.db")},
		Secrets:  SecretsConfig{KeyPath: filepath.Join(dir, "key.txt")},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			PollSeconds:   60,
			LookbackHours: 24,
		},
	}
}

// Load reads the configuration at path, filling unset fields from the
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults(filepath.Dir(path))

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Scheduler.PollSeconds <= 0 {
		cfg.Scheduler.PollSeconds = 60
	}
	if cfg.Scheduler.LookbackHours <= 0 {
		cfg.Scheduler.LookbackHours = 24
	}
	return cfg, nil
}

// Save writes the configuration to path, creating the directory (mode
// 0700) if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
