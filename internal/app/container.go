// Package app provides the dependency injection container for the
// application.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/incidentkit/incident-sync/internal/core"
	"github.com/incidentkit/incident-sync/internal/infra/config"
	"github.com/incidentkit/incident-sync/internal/infra/logging"
	"github.com/incidentkit/incident-sync/internal/infra/replay"
)

// DefaultConfigPath is consulted when no config path is given.
const DefaultConfigPath = "incident-sync.toml"

// Container holds the wired application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	logFile *os.File
}

// New loads configuration and builds the logger. An empty path falls
// back to DefaultConfigPath; a missing file yields defaults.
func New(configPath string) (*Container, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}

	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		file, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		c.logFile = file
		c.Logger = logging.New(file, level)
	} else {
		c.Logger = logging.New(os.Stderr, level)
	}
	return c, nil
}

// NewWithDeps creates a Container with explicit dependencies for
// tests.
func NewWithDeps(cfg *config.Config, logger *slog.Logger) *Container {
	return &Container{Config: cfg, Logger: logger}
}

// Close releases the log file, if one was opened.
func (c *Container) Close() error {
	if c.logFile != nil {
		return c.logFile.Close()
	}
	return nil
}

// ReplayOptions builds replay options from the configured sync
// timings.
func (c *Container) ReplayOptions() replay.Options {
	return replay.Options{
		Logger:         c.Logger,
		StepDelay:      c.Config.Replay.StepDelayOr(0),
		PendingTimeout: c.Config.Sync.PendingTimeoutOr(core.DefaultPendingTimeout),
		SweepInterval:  c.Config.Sync.SweepIntervalOr(core.DefaultSweepInterval),
		FetchTimeout:   c.Config.Sync.FetchTimeoutOr(core.DefaultFetchTimeout),
	}
}
