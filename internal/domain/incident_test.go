package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncident_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Incident)
		expected bool
	}{
		{name: "complete record", mutate: func(*Incident) {}, expected: true},
		{name: "missing id", mutate: func(i *Incident) { i.ID = "" }, expected: false},
		{name: "missing team", mutate: func(i *Incident) { i.TeamID = "" }, expected: false},
		{name: "missing channel", mutate: func(i *Incident) { i.ChannelID = "" }, expected: false},
		{name: "stage out of range", mutate: func(i *Incident) { i.ActiveStage = 2 }, expected: false},
		{name: "negative stage", mutate: func(i *Incident) { i.ActiveStage = -1 }, expected: false},
		{name: "no checklists ignores stage", mutate: func(i *Incident) {
			i.Checklists = nil
			i.ActiveStage = 7
		}, expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incident := &Incident{
				ID:        "inc1",
				TeamID:    "team1",
				ChannelID: "chan1",
				IsActive:  true,
				Checklists: []Checklist{
					{Title: "Stage 1"},
					{Title: "Stage 2"},
				},
			}
			tt.mutate(incident)
			assert.Equal(t, tt.expected, incident.IsValid())
		})
	}
}

func TestIncident_CloneIsDeep(t *testing.T) {
	original := &Incident{
		ID:        "inc1",
		TeamID:    "team1",
		ChannelID: "chan1",
		Checklists: []Checklist{
			{Title: "Triage", Items: []ChecklistItem{{Title: "Assess"}}},
		},
	}

	clone := original.Clone()
	clone.Checklists[0].Items[0].State = ChecklistItemClosed
	clone.Checklists[0].Title = "changed"

	assert.Equal(t, "Triage", original.Checklists[0].Title)
	assert.Equal(t, ChecklistItemOpen, original.Checklists[0].Items[0].State)
}

func TestSortByCreateAtDesc(t *testing.T) {
	incidents := []*Incident{
		{ID: "b", CreateAt: 100},
		{ID: "c", CreateAt: 300},
		{ID: "a", CreateAt: 100},
		{ID: "d", CreateAt: 200},
	}

	SortByCreateAtDesc(incidents)

	require.Len(t, incidents, 4)
	assert.Equal(t, "c", incidents[0].ID)
	assert.Equal(t, "d", incidents[1].ID)
	// Equal timestamps order by id for stability.
	assert.Equal(t, "a", incidents[2].ID)
	assert.Equal(t, "b", incidents[3].ID)
}

func TestIncident_Ended(t *testing.T) {
	assert.False(t, (&Incident{}).Ended())
	assert.True(t, (&Incident{EndAt: 42}).Ended())
}
