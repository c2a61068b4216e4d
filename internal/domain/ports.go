package domain

import (
	"context"
	"time"
)

// IncidentService is the REST boundary. Implementations perform the
// actual network calls; the sync core treats them as opaque
// request/response functions.
type IncidentService interface {
	// FetchForTeam returns every incident visible to the current user
	// on the given team.
	FetchForTeam(ctx context.Context, teamID string) ([]*Incident, error)

	// Fetch returns the incident hosted by the given channel.
	// Returns ErrIncidentNotFound if the channel hosts none.
	Fetch(ctx context.Context, channelID string) (*Incident, error)

	// Start requests a new incident. Success is communicated only via
	// the later transport event echoing clientToken, never via the
	// response. Returns ErrValidation or ErrPermission on rejection.
	Start(ctx context.Context, req StartRequest, clientToken string) error
}

// StartRequest carries the user-supplied fields of a start-incident
// submission.
type StartRequest struct {
	TeamID      string
	ChannelID   string // optional; empty lets the server create one
	Name        string
	CommanderID string
}

// Transport is the push-event subscription boundary. Delivery is
// at-least-once and unordered; there is no replay or history.
type Transport interface {
	// Subscribe registers the handler for all raw payloads and returns
	// a function that removes the subscription.
	Subscribe(handler func(payload []byte)) (func(), error)
}

// Notifier receives the failures the core absorbs but the UI layer may
// want to surface. All methods are fire-and-forget.
type Notifier interface {
	// StartTimedOut reports that a locally initiated start-incident
	// request received no confirming event within the timeout.
	StartTimedOut(clientToken, teamID string)

	// FetchFailed reports that a team snapshot or targeted fetch
	// rejected; the index keeps its last known-good state.
	FetchFailed(teamID string, err error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
