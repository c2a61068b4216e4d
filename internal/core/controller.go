package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/incidentkit/incident-sync/internal/domain"
)

// Default timings for the controller's background work.
const (
	DefaultSweepInterval = 5 * time.Second
	DefaultFetchTimeout  = 15 * time.Second
)

// ControllerOptions configures a Controller. Service is required;
// everything else has a usable default.
type ControllerOptions struct {
	Service        domain.IncidentService
	Transport      domain.Transport
	Notifier       domain.Notifier
	Clock          domain.Clock
	Logger         *slog.Logger
	PendingTimeout time.Duration
	SweepInterval  time.Duration
	FetchTimeout   time.Duration
}

// Controller orchestrates the synchronization core. It owns the index,
// the correlation registry, and the state machine exclusively, and
// serializes every entry point behind one mutex so the components
// themselves stay free of concurrency concerns. Transport callbacks,
// user navigation, and fetch completions all funnel through here.
type Controller struct {
	mu       sync.Mutex
	index    *Index
	registry *CorrelationRegistry
	machine  *StateMachine

	service   domain.IncidentService
	transport domain.Transport
	notifier  domain.Notifier
	clock     domain.Clock
	logger    *slog.Logger

	viewCtx domain.ViewContext
	hasView bool

	// gen tags in-flight team fetches; a team switch increments it and
	// stale results are dropped by comparison.
	gen         uint64
	fetchCancel context.CancelFunc

	// fetching dedupes targeted per-channel fetches.
	fetching map[string]struct{}

	listeners    map[int]func()
	nextListener int

	sweepInterval time.Duration
	fetchTimeout  time.Duration

	runCtx      context.Context
	unsubscribe func()
	stopOnce    sync.Once
	stopped     chan struct{}
}

// NewController creates a controller. It does not touch the network;
// call Start to subscribe to the transport and begin sweeping.
func NewController(opts ControllerOptions) *Controller {
	clock := opts.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sweepInterval := opts.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}

	c := &Controller{
		index:         NewIndex(),
		registry:      NewCorrelationRegistry(opts.PendingTimeout),
		service:       opts.Service,
		transport:     opts.Transport,
		notifier:      opts.Notifier,
		clock:         clock,
		logger:        logger,
		fetching:      make(map[string]struct{}),
		listeners:     make(map[int]func()),
		sweepInterval: sweepInterval,
		fetchTimeout:  fetchTimeout,
		runCtx:        context.Background(),
		stopped:       make(chan struct{}),
	}
	c.machine = NewStateMachine(c.index.Has)
	return c
}

// Start subscribes to the transport and starts the sweep loop. The
// context bounds all background work; Stop (or context cancellation)
// tears everything down.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	if c.transport != nil {
		unsubscribe, err := c.transport.Subscribe(c.HandleRawEvent)
		if err != nil {
			return fmt.Errorf("subscribe transport: %w", err)
		}
		c.mu.Lock()
		c.unsubscribe = unsubscribe
		c.mu.Unlock()
	}

	go c.sweepLoop(ctx)
	return nil
}

// Stop unsubscribes from the transport and stops the sweep loop.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopped)
		c.mu.Lock()
		unsubscribe := c.unsubscribe
		cancel := c.fetchCancel
		c.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		if cancel != nil {
			cancel()
		}
	})
}

func (c *Controller) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopped:
			return
		case <-ticker.C:
			c.SweepPending()
		}
	}
}

// SweepPending expires overdue pending actions and reports each
// timeout to the notifier. The sweep loop calls this periodically.
func (c *Controller) SweepPending() {
	c.mu.Lock()
	expired := c.registry.Sweep(c.clock.Now())
	c.mu.Unlock()

	for _, action := range expired {
		c.logger.Warn("start-incident confirmation never arrived",
			"client_token", action.ClientToken, "team_id", action.TeamID)
		if c.notifier != nil {
			c.notifier.StartTimedOut(action.ClientToken, action.TeamID)
		}
	}
}

// HandleRawEvent ingests one raw transport payload. All failures are
// absorbed here: a panic or error escaping a transport callback would
// break every future delivery.
func (c *Controller) HandleRawEvent(payload []byte) {
	event, err := Normalize(payload)
	if err != nil {
		c.logger.Debug("dropping malformed transport payload", "error", err)
		return
	}
	if event.Kind == domain.EventIgnored {
		return
	}

	changed := c.applyEvent(event)
	if changed {
		c.notify()
	}
}

func (c *Controller) applyEvent(event domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Kind {
	case domain.EventIncidentCreated:
		if event.ClientToken != "" {
			if action, ok := c.registry.Resolve(event.ClientToken); ok {
				c.logger.Debug("local start confirmed",
					"client_token", action.ClientToken, "incident_id", event.Incident.ID)
			}
			// No pending entry means the token was swept or belongs to
			// another session; either way this is someone else's
			// incident and inserts normally.
		}
		return c.index.Upsert(event.Incident) != ChangeNoOp

	case domain.EventIncidentUpdated:
		return c.applyUpdate(event.Incident)

	case domain.EventUserRemoved:
		if event.UserID != c.viewCtx.UserID {
			return false
		}
		record, ok := c.index.GetByChannel(event.ChannelID)
		if !ok {
			return false
		}
		c.index.Remove(record.TeamID, record.ChannelID)
		c.machine.Removed(record.ID)
		return true

	case domain.EventUserAdded, domain.EventChannelUpdated, domain.EventPostEditedOrDeleted:
		if _, ok := c.index.GetByChannel(event.ChannelID); ok {
			return false
		}
		c.fetchChannelLocked(event.ChannelID)
		return false

	default:
		return false
	}
}

// applyUpdate routes an updated record through Upsert, except for the
// restart signal: an active record for a stored ended incident with an
// unchanged CreateAt is the same incident reopened, which is the one
// path allowed past the non-downgrade rule.
func (c *Controller) applyUpdate(record *domain.Incident) bool {
	stored, ok := c.index.Get(record.TeamID, record.ChannelID)
	if ok && stored.Ended() && record.IsActive && record.CreateAt == stored.CreateAt {
		return c.index.Reactivate(record) != ChangeNoOp
	}
	return c.index.Upsert(record) != ChangeNoOp
}

// SetViewContext takes the host's navigation context. A team change
// invalidates in-flight fetches and refetches the whole team snapshot;
// a channel change only moves the state machine.
func (c *Controller) SetViewContext(viewCtx domain.ViewContext) {
	c.mu.Lock()
	prev := c.viewCtx
	first := !c.hasView
	c.viewCtx = viewCtx
	c.hasView = true

	if first || viewCtx.TeamID != prev.TeamID {
		c.refreshTeamLocked(viewCtx.TeamID)
		c.mu.Unlock()
		return
	}

	changed := false
	if viewCtx.ChannelID != prev.ChannelID {
		changed = c.machine.Navigate(c.channelIncidentIDLocked())
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Reconnect resyncs the current team after the transport dropped and
// came back. The transport has no replay, so everything missed must
// come from a fresh snapshot.
func (c *Controller) Reconnect() {
	c.mu.Lock()
	if !c.hasView {
		c.mu.Unlock()
		return
	}
	c.refreshTeamLocked(c.viewCtx.TeamID)
	c.mu.Unlock()
}

// refreshTeamLocked starts a coalesced full-snapshot fetch. The
// caller holds the mutex.
func (c *Controller) refreshTeamLocked(teamID string) {
	c.gen++
	gen := c.gen
	if c.fetchCancel != nil {
		c.fetchCancel()
	}
	ctx, cancel := context.WithTimeout(c.runCtx, c.fetchTimeout)
	c.fetchCancel = cancel

	go func() {
		defer cancel()
		records, err := c.service.FetchForTeam(ctx, teamID)
		c.applySnapshot(teamID, gen, records, err)
	}()
}

func (c *Controller) applySnapshot(teamID string, gen uint64, records []*domain.Incident, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// Superseded by a later team switch; drop silently.
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("team snapshot fetch failed", "team_id", teamID, "error", err)
		if c.notifier != nil {
			c.notifier.FetchFailed(teamID, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err))
		}
		return
	}
	c.index.ReplaceTeamSnapshot(teamID, records)
	c.machine.Reset(c.channelIncidentIDLocked())
	c.mu.Unlock()
	c.notify()
}

// fetchChannelLocked starts a targeted fetch for one channel's
// incident. The caller holds the mutex.
func (c *Controller) fetchChannelLocked(channelID string) {
	if _, inFlight := c.fetching[channelID]; inFlight {
		return
	}
	c.fetching[channelID] = struct{}{}
	gen := c.gen
	ctx, cancel := context.WithTimeout(c.runCtx, c.fetchTimeout)

	go func() {
		defer cancel()
		record, err := c.service.Fetch(ctx, channelID)
		c.applyChannelFetch(channelID, gen, record, err)
	}()
}

func (c *Controller) applyChannelFetch(channelID string, gen uint64, record *domain.Incident, err error) {
	c.mu.Lock()
	delete(c.fetching, channelID)
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, domain.ErrIncidentNotFound) {
			// The channel hosts no incident; nothing to index.
			return
		}
		c.logger.Warn("channel fetch failed", "channel_id", channelID, "error", err)
		if c.notifier != nil {
			c.notifier.FetchFailed("", fmt.Errorf("%w: %w", domain.ErrFetchFailed, err))
		}
		return
	}
	changed := c.index.Upsert(record) != ChangeNoOp
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// StartIncident submits a start-incident request tagged with a fresh
// client token. The index is deliberately left untouched: the
// confirming transport event is the sole source of truth, which avoids
// a second, possibly divergent, local-only record. Validation and
// permission rejections resolve the pending entry immediately since no
// confirming event will arrive.
func (c *Controller) StartIncident(ctx context.Context, req domain.StartRequest) (string, error) {
	token := uuid.NewString()

	c.mu.Lock()
	err := c.registry.Register(token, req.TeamID, c.clock.Now())
	c.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("register client token: %w", err)
	}

	if err := c.service.Start(ctx, req, token); err != nil {
		c.mu.Lock()
		c.registry.Resolve(token)
		c.mu.Unlock()
		return "", fmt.Errorf("start incident: %w", err)
	}
	return token, nil
}

// Open shows the panel: the current channel's incident detail if it
// hosts one, the list otherwise.
func (c *Controller) Open() {
	c.mu.Lock()
	changed := c.machine.Open(c.channelIncidentIDLocked())
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// Close hides the panel.
func (c *Controller) Close() {
	c.mu.Lock()
	changed := c.machine.Close()
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// NavigateToList returns from a detail view to the list.
func (c *Controller) NavigateToList() {
	c.mu.Lock()
	changed := c.machine.Back()
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// NavigateToDetail shows the detail view for an incident chosen from
// the list.
func (c *Controller) NavigateToDetail(incidentID string) {
	c.mu.Lock()
	changed := c.machine.Select(incidentID)
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// VisibleState returns the panel's current visible state.
func (c *Controller) VisibleState() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// ActiveIncidents returns the current team's active incidents, newest
// first, for list rendering.
func (c *Controller) ActiveIncidents() []*domain.Incident {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.ListActiveForTeam(c.viewCtx.TeamID)
}

// Incident returns the indexed record with the given id, for detail
// rendering.
func (c *Controller) Incident(incidentID string) (*domain.Incident, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.GetByID(incidentID)
}

// ViewContext returns the last context pushed by the host.
func (c *Controller) ViewContext() domain.ViewContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewCtx
}

// OnStateChange registers a listener fired after any index mutation or
// state-machine transition. The returned function removes it.
func (c *Controller) OnStateChange(listener func()) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// channelIncidentIDLocked returns the id of the active incident hosted
// by the current channel, or "". The caller holds the mutex.
func (c *Controller) channelIncidentIDLocked() string {
	record, ok := c.index.Get(c.viewCtx.TeamID, c.viewCtx.ChannelID)
	if !ok || !record.IsActive {
		return ""
	}
	return record.ID
}

// notify invokes listeners outside the mutex so a listener may re-enter
// the controller.
func (c *Controller) notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
