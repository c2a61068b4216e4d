package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incidentkit/incident-sync/internal/domain"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: smoke
view:
  team_id: team1
  channel_id: chan1
  user_id: user1
snapshots:
  team1:
    - id: inc1
      name: db outage
      team_id: team1
      channel_id: chan1
      commander: commander1
      is_active: true
      create_at: 100
      stages:
        - Triage
        - Mitigate
channels:
  chan9:
    id: inc9
    team_id: team1
    channel_id: chan9
    is_active: true
steps:
  - events_file: events.jsonl
  - select: inc1
  - action: back
  - view:
      team_id: team2
      user_id: user1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "smoke", scenario.Name)
	assert.Equal(t, "team1", scenario.View.TeamID)
	assert.Len(t, scenario.Steps, 4)
	assert.Equal(t, filepath.Dir(path), scenario.dir)

	require.Len(t, scenario.Snapshots["team1"], 1)
	record := scenario.Snapshots["team1"][0].toDomain()
	assert.True(t, record.IsValid())
	assert.True(t, record.IsActive)
	require.Len(t, record.Checklists, 2)
	assert.Equal(t, "Mitigate", record.Checklists[1].Title)

	assert.Equal(t, "inc9", scenario.Channels["chan9"].ID)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing team",
			content: "name: x\nsteps: []\n",
		},
		{
			name: "unknown action",
			content: `
view: {team_id: team1}
steps:
  - action: explode
`,
		},
		{
			name: "empty step",
			content: `
view: {team_id: team1}
steps:
  - {}
`,
		},
		{
			name: "two fields in one step",
			content: `
view: {team_id: team1}
steps:
  - action: open
    select: inc1
`,
		},
		{
			name:    "not yaml",
			content: "view: [unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestScriptedService(t *testing.T) {
	scenario := &Scenario{
		Snapshots: map[string][]IncidentSpec{
			"team1": {{ID: "inc1", TeamID: "team1", ChannelID: "chan1", IsActive: true, CreateAt: 100}},
		},
		Channels: map[string]IncidentSpec{
			"chan2": {ID: "inc2", TeamID: "team1", ChannelID: "chan2", IsActive: true},
		},
	}
	service := NewScriptedService(scenario)

	records, err := service.FetchForTeam(t.Context(), "team1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "inc1", records[0].ID)

	// Mutating a returned record must not leak into later fetches.
	records[0].Name = "changed"
	again, err := service.FetchForTeam(t.Context(), "team1")
	require.NoError(t, err)
	assert.Empty(t, again[0].Name)

	record, err := service.Fetch(t.Context(), "chan2")
	require.NoError(t, err)
	assert.Equal(t, "inc2", record.ID)

	_, err = service.Fetch(t.Context(), "chan404")
	require.ErrorIs(t, err, domain.ErrIncidentNotFound)

	empty, err := service.FetchForTeam(t.Context(), "team404")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
