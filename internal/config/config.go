// Package config handles configuration loading and validation for proctord.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the complete daemon configuration.
type Config struct {
	Monitor     MonitorConfig     `toml:"monitor"`
	Screenshots ScreenshotsConfig `toml:"screenshots"`
	Audit       AuditConfig       `toml:"audit"`
	Logging     LoggingConfig     `toml:"logging"`
	Scrub       ScrubConfig       `toml:"scrub"`
}

// MonitorConfig holds detection engine timing.
type MonitorConfig struct {
	// PollIntervalMs drives the window snapshot/classify tick.
	PollIntervalMs int `toml:"poll_interval_ms"`

	// ProcessScanIntervalMs drives the process-blacklist tick.
	ProcessScanIntervalMs int `toml:"process_scan_interval_ms"`

	// ExtraBlacklist names additional disallowed applications, appended to
	// the built-in blacklist.
	ExtraBlacklist []string `toml:"extra_blacklist"`
}

// ScreenshotsConfig holds screenshot watcher settings.
type ScreenshotsConfig struct {
	// Directory overrides the detected screenshot save location.
	// Empty means auto-detect.
	Directory string `toml:"directory"`

	// RecencyWindowSec bounds how old a screenshot file may be and still
	// count as freshly captured. Heuristic, not a guarantee.
	RecencyWindowSec int `toml:"recency_window_sec"`
}

// AuditConfig holds the encrypted local audit store settings.
type AuditConfig struct {
	// Enabled toggles the encrypted violation store.
	Enabled bool `toml:"enabled"`

	// DataDir is the directory for the audit database and key file.
	// Empty means a hidden directory under the user's home.
	DataDir string `toml:"data_dir"`
}

// LoggingConfig holds zap output settings.
type LoggingConfig struct {
	// Path is the log file; empty logs to stderr.
	Path string `toml:"path"`

	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// ScrubConfig holds self-destruct helper settings.
type ScrubConfig struct {
	// LingerMs is how long the helper sleeps before deleting, bounding the
	// race against the parent's still-mapped executable.
	LingerMs int `toml:"linger_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			PollIntervalMs:        1000,
			ProcessScanIntervalMs: 5000,
		},
		Screenshots: ScreenshotsConfig{
			RecencyWindowSec: 5,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Scrub: ScrubConfig{
			LingerMs: 1500,
		},
	}
}

// Load reads a TOML config file, applying defaults for absent fields.
// A missing file returns defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Monitor.PollIntervalMs <= 0 {
		return fmt.Errorf("monitor.poll_interval_ms must be positive, got %d", c.Monitor.PollIntervalMs)
	}
	if c.Monitor.ProcessScanIntervalMs <= 0 {
		return fmt.Errorf("monitor.process_scan_interval_ms must be positive, got %d", c.Monitor.ProcessScanIntervalMs)
	}
	if c.Screenshots.RecencyWindowSec <= 0 {
		return fmt.Errorf("screenshots.recency_window_sec must be positive, got %d", c.Screenshots.RecencyWindowSec)
	}
	if c.Scrub.LingerMs < 0 {
		return fmt.Errorf("scrub.linger_ms must not be negative, got %d", c.Scrub.LingerMs)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug/info/warn/error", c.Logging.Level)
	}
	return nil
}

// PollInterval returns the window tick duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.PollIntervalMs) * time.Millisecond
}

// ProcessScanInterval returns the blacklist tick duration.
func (c *Config) ProcessScanInterval() time.Duration {
	return time.Duration(c.Monitor.ProcessScanIntervalMs) * time.Millisecond
}

// RecencyWindow returns the screenshot freshness window.
func (c *Config) RecencyWindow() time.Duration {
	return time.Duration(c.Screenshots.RecencyWindowSec) * time.Second
}

// ScrubLinger returns the helper's pre-delete sleep.
func (c *Config) ScrubLinger() time.Duration {
	return time.Duration(c.Scrub.LingerMs) * time.Millisecond
}
