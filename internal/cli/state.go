package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/incidentkit/incident-sync/internal/app"
	"github.com/incidentkit/incident-sync/internal/domain"
	"github.com/incidentkit/incident-sync/internal/infra/replay"
)

// newStateCommand creates the state command: run a scenario to the end
// and dump the resulting index and visible state, without the per-step
// transcript.
func newStateCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "state <scenario.yaml>",
		Short: "Run a scenario and dump the final state",
		Long: `Run a scenario file to completion and print the final visible state
and the active incidents left in the index, newest first. Useful for
asserting on a scenario's outcome in scripts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := replay.LoadScenario(args[0])
			if err != nil {
				return err
			}

			opts := replay.Options{}
			if c != nil {
				opts = c.ReplayOptions()
			}
			// Outcome-only run; pauses would just slow it down.
			opts.StepDelay = 0

			runner := replay.NewRunner(scenario, opts)
			result, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			view := result.FinalState.Kind.String()
			if result.FinalState.Kind == domain.ViewDetail {
				view = view + ":" + result.FinalState.IncidentID
			}
			fmt.Fprintf(out, "view: %s\n", view)

			controller := runner.Controller()
			teamID := controller.ViewContext().TeamID
			records := controller.ActiveIncidents()
			fmt.Fprintf(out, "team %s: %d active\n", teamID, len(records))
			for _, record := range records {
				fmt.Fprintf(out, "  %s  %q  channel=%s  commander=%s  started=%s\n",
					record.ID,
					record.Name,
					record.ChannelID,
					record.CommanderUserID,
					time.UnixMilli(record.CreateAt).UTC().Format(time.RFC3339),
				)
			}
			return nil
		},
	}
}
