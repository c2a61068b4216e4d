package replay

import (
	"context"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// ScriptedService answers fetches from scenario fixtures. Start always
// succeeds; confirmation arrives, as in production, only through a
// later injected event carrying the client token.
type ScriptedService struct {
	snapshots map[string][]*domain.Incident
	channels  map[string]*domain.Incident
}

// NewScriptedService builds a service from a scenario's fixtures.
func NewScriptedService(scenario *Scenario) *ScriptedService {
	s := &ScriptedService{
		snapshots: make(map[string][]*domain.Incident),
		channels:  make(map[string]*domain.Incident),
	}
	for teamID, specs := range scenario.Snapshots {
		for _, spec := range specs {
			s.snapshots[teamID] = append(s.snapshots[teamID], spec.toDomain())
		}
	}
	for channelID, spec := range scenario.Channels {
		s.channels[channelID] = spec.toDomain()
	}
	return s
}

// FetchForTeam returns clones of the team's fixture snapshot.
func (s *ScriptedService) FetchForTeam(_ context.Context, teamID string) ([]*domain.Incident, error) {
	records := make([]*domain.Incident, 0, len(s.snapshots[teamID]))
	for _, record := range s.snapshots[teamID] {
		records = append(records, record.Clone())
	}
	return records, nil
}

// Fetch returns a clone of the channel's fixture incident.
func (s *ScriptedService) Fetch(_ context.Context, channelID string) (*domain.Incident, error) {
	record, ok := s.channels[channelID]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	return record.Clone(), nil
}

// Start accepts every request; the scenario script is responsible for
// injecting the confirming created event.
func (s *ScriptedService) Start(context.Context, domain.StartRequest, string) error {
	return nil
}

var _ domain.IncidentService = (*ScriptedService)(nil)
