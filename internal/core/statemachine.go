package core

import "github.com/incidentkit/incident-sync/internal/domain"

// StateMachine drives the panel's visible state. It never enters a
// detail view for an incident absent from the index: the exists guard
// resolves such transitions to the list instead. Not safe for
// concurrent use; the controller serializes access.
type StateMachine struct {
	exists func(incidentID string) bool
	state  domain.ViewState
}

// NewStateMachine creates a machine in the hidden state. exists
// reports whether an incident id is currently indexed.
func NewStateMachine(exists func(incidentID string) bool) *StateMachine {
	return &StateMachine{
		exists: exists,
		state:  domain.ViewState{Kind: domain.ViewHidden},
	}
}

// State returns the current visible state.
func (m *StateMachine) State() domain.ViewState {
	return m.state
}

// Open shows the panel. If the current channel hosts an active
// incident its detail is shown, otherwise the list. No-op when the
// panel is already open.
func (m *StateMachine) Open(channelIncidentID string) bool {
	if m.state.Kind != domain.ViewHidden {
		return false
	}
	if channelIncidentID != "" {
		return m.toDetail(channelIncidentID)
	}
	return m.toList()
}

// Close hides the panel from any state.
func (m *StateMachine) Close() bool {
	if m.state.Kind == domain.ViewHidden {
		return false
	}
	m.state = domain.ViewState{Kind: domain.ViewHidden}
	return true
}

// Back returns from a detail view to the list.
func (m *StateMachine) Back() bool {
	if m.state.Kind != domain.ViewDetail {
		return false
	}
	return m.toList()
}

// Select shows the detail view for an incident chosen from the list.
func (m *StateMachine) Select(incidentID string) bool {
	if m.state.Kind != domain.ViewList {
		return false
	}
	return m.toDetail(incidentID)
}

// Navigate reacts to a channel change. While the panel is open,
// entering a channel hosting an active incident shows its detail;
// entering any other channel drops a detail view back to the list.
// A hidden panel stays hidden.
func (m *StateMachine) Navigate(channelIncidentID string) bool {
	if m.state.Kind == domain.ViewHidden {
		return false
	}
	if channelIncidentID != "" {
		if m.state.Kind == domain.ViewDetail && m.state.IncidentID == channelIncidentID {
			return false
		}
		return m.toDetail(channelIncidentID)
	}
	if m.state.Kind == domain.ViewDetail {
		return m.toList()
	}
	return false
}

// Removed reacts to an incident leaving the index. A detail view on
// the removed incident force-transitions to the list.
func (m *StateMachine) Removed(incidentID string) bool {
	if m.state.Kind == domain.ViewDetail && m.state.IncidentID == incidentID {
		return m.toList()
	}
	return false
}

// Reset re-derives the state for a fresh context: an open panel falls
// back to the list (or the new channel's detail), a hidden one stays
// hidden. Used after a team switch replaces the working set.
func (m *StateMachine) Reset(channelIncidentID string) bool {
	if m.state.Kind == domain.ViewHidden {
		return false
	}
	if channelIncidentID != "" {
		return m.toDetail(channelIncidentID)
	}
	return m.toList()
}

func (m *StateMachine) toDetail(incidentID string) bool {
	if m.exists != nil && !m.exists(incidentID) {
		return m.toList()
	}
	next := domain.ViewState{Kind: domain.ViewDetail, IncidentID: incidentID}
	if m.state == next {
		return false
	}
	m.state = next
	return true
}

func (m *StateMachine) toList() bool {
	next := domain.ViewState{Kind: domain.ViewList}
	if m.state == next {
		return false
	}
	m.state = next
	return true
}
