package core

import (
	"time"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// DefaultPendingTimeout bounds how long a locally initiated
// start-incident request waits for its confirming event.
const DefaultPendingTimeout = 30 * time.Second

// PendingAction is a locally initiated start-incident request awaiting
// server confirmation.
type PendingAction struct {
	RequestedAt time.Time
	ClientToken string
	TeamID      string
}

// CorrelationRegistry maps locally generated client tokens to pending
// actions so a confirming event for this client can be told apart from
// an event about someone else's action. It is not safe for concurrent
// use; the controller serializes access.
type CorrelationRegistry struct {
	pending map[string]PendingAction
	order   []string // registration order, for deterministic sweeps
	timeout time.Duration
}

// NewCorrelationRegistry creates a registry with the given timeout.
// A non-positive timeout falls back to DefaultPendingTimeout.
func NewCorrelationRegistry(timeout time.Duration) *CorrelationRegistry {
	if timeout <= 0 {
		timeout = DefaultPendingTimeout
	}
	return &CorrelationRegistry{
		pending: make(map[string]PendingAction),
		timeout: timeout,
	}
}

// Register records a pending action. Returns ErrTokenRegistered if the
// token is already pending; the existing entry is kept.
func (r *CorrelationRegistry) Register(clientToken, teamID string, now time.Time) error {
	if _, ok := r.pending[clientToken]; ok {
		return domain.ErrTokenRegistered
	}
	r.pending[clientToken] = PendingAction{
		ClientToken: clientToken,
		TeamID:      teamID,
		RequestedAt: now,
	}
	r.order = append(r.order, clientToken)
	return nil
}

// Resolve removes and returns the pending entry for the token.
// A second call for the same token reports false.
func (r *CorrelationRegistry) Resolve(clientToken string) (PendingAction, bool) {
	action, ok := r.pending[clientToken]
	if !ok {
		return PendingAction{}, false
	}
	delete(r.pending, clientToken)
	return action, true
}

// Sweep removes entries older than the timeout and returns them in
// registration order. A never-confirmed action must not leak, and must
// not silently suppress a later unrelated event.
func (r *CorrelationRegistry) Sweep(now time.Time) []PendingAction {
	var expired []PendingAction
	kept := r.order[:0]
	for _, token := range r.order {
		action, ok := r.pending[token]
		if !ok {
			continue // already resolved
		}
		if now.Sub(action.RequestedAt) > r.timeout {
			delete(r.pending, token)
			expired = append(expired, action)
			continue
		}
		kept = append(kept, token)
	}
	r.order = kept
	return expired
}

// Len returns the number of pending actions.
func (r *CorrelationRegistry) Len() int {
	return len(r.pending)
}
