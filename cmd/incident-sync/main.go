// Package main is the entry point for the incident-sync CLI.
package main

import (
	"fmt"
	"os"

	"github.com/incidentkit/incident-sync/internal/app"
	"github.com/incidentkit/incident-sync/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	container, err := app.New(os.Getenv("INCIDENT_SYNC_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.Execute()
}
