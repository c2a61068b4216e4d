package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/incidentkit/incident-sync/internal/infra/replay"
)

// newCheckCommand creates the check command for validating scenario
// and event files without running them.
func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate scenario and event files",
		Long: `Validate files without running them. YAML files are parsed as
scenarios; JSONL files are scanned as recorded event streams and
malformed lines are reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				switch filepath.Ext(path) {
				case ".yaml", ".yml":
					scenario, err := replay.LoadScenario(path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d steps)\n", path, len(scenario.Steps))
				case ".jsonl":
					payloads, skipped, err := replay.ReadEvents(path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d events, %d malformed)\n", path, len(payloads), skipped)
				default:
					return fmt.Errorf("%s: unsupported file type %q", path, filepath.Ext(path))
				}
			}
			return nil
		},
	}
}
