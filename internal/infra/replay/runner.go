package replay

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/incidentkit/incident-sync/internal/core"
	"github.com/incidentkit/incident-sync/internal/domain"
	"github.com/incidentkit/incident-sync/internal/infra/logging"
)

// Options tunes a replay run.
type Options struct {
	// Logger receives the controller's diagnostics. Nil discards.
	Logger *slog.Logger
	// Notifier receives the failures the controller absorbs. Optional.
	Notifier domain.Notifier
	// StepDelay pauses between steps so a live view can be followed.
	StepDelay time.Duration
	// SettleTimeout bounds the wait for asynchronous work (snapshot and
	// targeted fetches) after each step.
	SettleTimeout time.Duration

	// Controller timings; zero values use the controller defaults.
	PendingTimeout time.Duration
	SweepInterval  time.Duration
	FetchTimeout   time.Duration
}

// Result is the transcript of a completed run.
type Result struct {
	// Transcript has one line per step describing the visible state
	// after the step settled.
	Transcript []string
	// FinalState is the visible state after the last step.
	FinalState domain.ViewState
	// SkippedEvents counts malformed lines dropped from events files.
	SkippedEvents int
}

// Runner drives a controller through a scenario's steps.
type Runner struct {
	scenario   *Scenario
	controller *core.Controller
	opts       Options
	changes    chan struct{}
	remove     func()
}

// NewRunner wires a controller to the scenario's scripted service. The
// caller owns the controller lifecycle via Run.
func NewRunner(scenario *Scenario, opts Options) *Runner {
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = 250 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscard()
	}
	controller := core.NewController(core.ControllerOptions{
		Service:        NewScriptedService(scenario),
		Notifier:       opts.Notifier,
		Logger:         logger,
		PendingTimeout: opts.PendingTimeout,
		SweepInterval:  opts.SweepInterval,
		FetchTimeout:   opts.FetchTimeout,
	})
	r := &Runner{
		scenario:   scenario,
		controller: controller,
		opts:       opts,
		changes:    make(chan struct{}, 1),
	}
	r.remove = controller.OnStateChange(func() {
		select {
		case r.changes <- struct{}{}:
		default:
		}
	})
	return r
}

// Controller exposes the driven controller so a live view can attach.
func (r *Runner) Controller() *core.Controller {
	return r.controller
}

// Run executes every step in order and returns the transcript. The
// controller is stopped before returning.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.controller.Start(ctx); err != nil {
		return nil, err
	}
	defer r.controller.Stop()
	defer r.remove()

	result := &Result{}

	r.controller.SetViewContext(domain.ViewContext{
		TeamID:    r.scenario.View.TeamID,
		ChannelID: r.scenario.View.ChannelID,
		UserID:    r.scenario.View.UserID,
	})
	if err := r.waitChange(ctx); err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}
	result.Transcript = append(result.Transcript, r.describe(0, "load"))

	for i, step := range r.scenario.Steps {
		if r.opts.StepDelay > 0 {
			select {
			case <-time.After(r.opts.StepDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		label, err := r.apply(step, result)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		r.settle(ctx)
		result.Transcript = append(result.Transcript, r.describe(i+1, label))
	}

	result.FinalState = r.controller.VisibleState()
	return result, nil
}

func (r *Runner) apply(step Step, result *Result) (string, error) {
	switch {
	case step.View != nil:
		r.controller.SetViewContext(domain.ViewContext{
			TeamID:    step.View.TeamID,
			ChannelID: step.View.ChannelID,
			UserID:    step.View.UserID,
		})
		return "view " + step.View.TeamID, nil

	case step.Event != "":
		r.controller.HandleRawEvent([]byte(step.Event))
		return "event", nil

	case step.EventsFile != "":
		path := step.EventsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.scenario.dir, path)
		}
		payloads, skipped, err := ReadEvents(path)
		if err != nil {
			return "", err
		}
		result.SkippedEvents += skipped
		for _, payload := range payloads {
			r.controller.HandleRawEvent(payload)
		}
		return fmt.Sprintf("events x%d", len(payloads)), nil

	case step.Action == "open":
		r.controller.Open()
		return "open", nil
	case step.Action == "close":
		r.controller.Close()
		return "close", nil
	case step.Action == "back":
		r.controller.NavigateToList()
		return "back", nil
	case step.Action == "reconnect":
		r.controller.Reconnect()
		return "reconnect", nil

	case step.Select != "":
		r.controller.NavigateToDetail(step.Select)
		return "select " + step.Select, nil
	}
	return "", fmt.Errorf("%w: empty step", domain.ErrValidation)
}

// waitChange blocks until the controller notifies or the settle
// timeout expires; used where a notification is expected.
func (r *Runner) waitChange(ctx context.Context) error {
	select {
	case <-r.changes:
		return nil
	case <-time.After(r.opts.SettleTimeout):
		return fmt.Errorf("no state change within %s", r.opts.SettleTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle drains a pending notification if asynchronous work produced
// one; steps with purely synchronous effects pass through untouched.
func (r *Runner) settle(ctx context.Context) {
	select {
	case <-r.changes:
	case <-time.After(r.opts.SettleTimeout):
	case <-ctx.Done():
	}
}

func (r *Runner) describe(step int, label string) string {
	state := r.controller.VisibleState()
	active := len(r.controller.ActiveIncidents())
	view := state.Kind.String()
	if state.Kind == domain.ViewDetail {
		view = view + ":" + state.IncidentID
	}
	return fmt.Sprintf("%02d %-16s -> %s (%d active)", step, label, view, active)
}
