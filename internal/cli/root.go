// Package cli provides the command-line interface for incident-sync.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/incidentkit/incident-sync/internal/app"
)

// NewRootCommand creates the root command for incident-sync.
// It receives the container for dependency injection and version for
// display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "incident-sync",
		Short: "Incident panel synchronization toolkit",
		Long: `incident-sync keeps a client-side incident panel consistent with
server push events and REST snapshots. The binary wraps the sync core
in a replay harness: recorded event streams and scripted scenarios can
be run headless for a transcript, or watched live in a terminal panel.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddCommand(
		newReplayCommand(c),
		newStateCommand(c),
		newCheckCommand(),
	)

	return root
}
