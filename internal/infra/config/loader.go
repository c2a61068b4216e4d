// Package config provides configuration loading for incident-sync.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration loaded from a TOML file.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Sync   SyncConfig   `toml:"sync"`
	Replay ReplayConfig `toml:"replay"`
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // empty = stderr
}

// SyncConfig holds controller timings from the [sync] section.
// Durations use Go syntax ("30s", "1m").
type SyncConfig struct {
	PendingTimeout string `toml:"pending_timeout"`
	SweepInterval  string `toml:"sweep_interval"`
	FetchTimeout   string `toml:"fetch_timeout"`
}

// ReplayConfig holds replay harness settings from the [replay] section.
type ReplayConfig struct {
	StepDelay string `toml:"step_delay"`
}

// NewDefault returns the configuration used when no file exists.
func NewDefault() *Config {
	return &Config{
		Log:  LogConfig{Level: "info"},
		Sync: SyncConfig{PendingTimeout: "30s", SweepInterval: "5s", FetchTimeout: "15s"},
	}
}

// Load reads the configuration file at path, merged over defaults.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := NewDefault()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Timings are parsed lazily so a malformed duration degrades to the
// fallback instead of failing the whole load.

// PendingTimeoutOr returns the parsed pending timeout, or fallback
// when unset or malformed.
func (c *SyncConfig) PendingTimeoutOr(fallback time.Duration) time.Duration {
	return parseDuration(c.PendingTimeout, fallback)
}

// SweepIntervalOr returns the parsed sweep interval, or fallback.
func (c *SyncConfig) SweepIntervalOr(fallback time.Duration) time.Duration {
	return parseDuration(c.SweepInterval, fallback)
}

// FetchTimeoutOr returns the parsed fetch timeout, or fallback.
func (c *SyncConfig) FetchTimeoutOr(fallback time.Duration) time.Duration {
	return parseDuration(c.FetchTimeout, fallback)
}

// StepDelayOr returns the parsed replay step delay, or fallback.
func (c *ReplayConfig) StepDelayOr(fallback time.Duration) time.Duration {
	return parseDuration(c.StepDelay, fallback)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
