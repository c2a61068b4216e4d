package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/incidentkit/incident-sync/internal/app"
	"github.com/incidentkit/incident-sync/internal/infra/logging"
	"github.com/incidentkit/incident-sync/internal/infra/replay"
	"github.com/incidentkit/incident-sync/internal/tui"
)

// launchPanelFunc is a function variable for launching the live panel,
// allowing it to be mocked in tests.
var launchPanelFunc = launchPanel

// newReplayCommand creates the replay command.
func newReplayCommand(c *app.Container) *cobra.Command {
	var withPanel bool
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Run a scripted scenario against the sync core",
		Long: `Run a scenario file against the synchronization core. By default the
run is headless and prints a transcript of the visible state after each
step. With --tui the scenario plays inside the live incident panel.`,
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
			if cmd.Flags().Changed("delay") {
				opts.StepDelay = delay
			}

			if withPanel {
				return launchPanelFunc(cmd.Context(), scenario, opts)
			}

			result, err := replay.NewRunner(scenario, opts).Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, line := range result.Transcript {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if result.SkippedEvents > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed event line(s)\n", result.SkippedEvents)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withPanel, "tui", false, "Play the scenario in the live panel")
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "Pause between steps")

	return cmd
}

// launchPanel plays the scenario inside the terminal panel. The
// scenario runs in the background; quitting the panel cancels it.
func launchPanel(ctx context.Context, scenario *replay.Scenario, opts replay.Options) error {
	// Stray log output corrupts the alternate screen.
	opts.Logger = logging.NewDiscard()

	notifier := tui.NewProgramNotifier()
	opts.Notifier = notifier

	runner := replay.NewRunner(scenario, opts)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(tui.New(runner.Controller()), tea.WithAltScreen())
	notifier.Attach(program)

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(runCtx)
		done <- err
	}()

	if _, err := program.Run(); err != nil {
		return err
	}
	cancel()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
