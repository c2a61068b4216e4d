package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incidentkit/incident-sync/internal/domain"
)

func createdEvent(t *testing.T, record *domain.Incident) string {
	t.Helper()
	inner, err := json.Marshal(map[string]any{"client_id": "", "incident": record})
	require.NoError(t, err)
	raw, err := json.Marshal(map[string]any{
		"event": "custom_incident_incident_created",
		"data":  map[string]any{"payload": string(inner)},
	})
	require.NoError(t, err)
	return string(raw)
}

func TestRunner_ScriptedSteps(t *testing.T) {
	inc2 := &domain.Incident{
		ID:        "inc2",
		Name:      "api latency",
		TeamID:    "team1",
		ChannelID: "chan2",
		IsActive:  true,
		CreateAt:  200,
	}
	scenario := &Scenario{
		Name: "scripted",
		View: View{TeamID: "team1", UserID: "user1"},
		Snapshots: map[string][]IncidentSpec{
			"team1": {{ID: "inc1", Name: "db outage", TeamID: "team1", ChannelID: "chan1", IsActive: true, CreateAt: 100}},
		},
		Steps: []Step{
			{Event: createdEvent(t, inc2)},
			{Action: "open"},
			{Select: "inc2"},
			{Action: "back"},
			{Action: "close"},
		},
	}

	runner := NewRunner(scenario, Options{SettleTimeout: 100 * time.Millisecond})
	result, err := runner.Run(t.Context())
	require.NoError(t, err)

	// Initial load plus one line per step.
	require.Len(t, result.Transcript, 6)
	assert.Contains(t, result.Transcript[3], "detail:inc2")
	assert.Contains(t, result.Transcript[3], "2 active")
	assert.Equal(t, domain.ViewHidden, result.FinalState.Kind)
	assert.Zero(t, result.SkippedEvents)
}

func TestRunner_FromScenarioFile(t *testing.T) {
	dir := t.TempDir()

	inc2 := &domain.Incident{
		ID:        "inc2",
		Name:      "api latency",
		TeamID:    "team1",
		ChannelID: "chan2",
		IsActive:  true,
		CreateAt:  200,
	}
	events := createdEvent(t, inc2) + "\n{broken\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.jsonl"), []byte(events), 0o644))

	scenarioYAML := `
name: from-disk
view:
  team_id: team1
  user_id: user1
snapshots:
  team1:
    - id: inc1
      name: db outage
      team_id: team1
      channel_id: chan1
      is_active: true
      create_at: 100
steps:
  - events_file: events.jsonl
  - action: open
  - select: inc2
  - action: back
`
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	runner := NewRunner(scenario, Options{SettleTimeout: 100 * time.Millisecond})
	result, err := runner.Run(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedEvents)
	assert.Equal(t, domain.ViewList, result.FinalState.Kind)
	assert.Contains(t, result.Transcript[1], "events x1")
}
