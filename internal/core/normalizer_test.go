package core

import (
	"testing"

	"github.com/incidentkit/incident-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_IncidentCreated(t *testing.T) {
	record := newIncident("inc1", "team1", "chan1", 100)
	raw := createdPayload(t, record, "tok1")

	event, err := Normalize(raw)

	require.NoError(t, err)
	assert.Equal(t, domain.EventIncidentCreated, event.Kind)
	assert.Equal(t, "tok1", event.ClientToken)
	require.NotNil(t, event.Incident)
	assert.Equal(t, "inc1", event.Incident.ID)
	assert.Equal(t, "chan1", event.Incident.ChannelID)
	require.Len(t, event.Incident.Checklists, 1)
	assert.Equal(t, "Triage", event.Incident.Checklists[0].Title)
}

func TestNormalize_IncidentCreated_NoToken(t *testing.T) {
	// Other viewers of the same team receive the event without a token.
	record := newIncident("inc1", "team1", "chan1", 100)
	raw := createdPayload(t, record, "")

	event, err := Normalize(raw)

	require.NoError(t, err)
	assert.Equal(t, domain.EventIncidentCreated, event.Kind)
	assert.Empty(t, event.ClientToken)
}

func TestNormalize_IncidentUpdated(t *testing.T) {
	record := ended(newIncident("inc1", "team1", "chan1", 100), 200)
	raw := updatedPayload(t, record)

	event, err := Normalize(raw)

	require.NoError(t, err)
	assert.Equal(t, domain.EventIncidentUpdated, event.Kind)
	assert.Empty(t, event.ClientToken)
	require.NotNil(t, event.Incident)
	assert.False(t, event.Incident.IsActive)
	assert.Equal(t, int64(200), event.Incident.EndAt)
}

func TestNormalize_MembershipEvents(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want domain.EventKind
	}{
		{name: "user added", wire: wireUserAdded, want: domain.EventUserAdded},
		{name: "user removed", wire: wireUserRemoved, want: domain.EventUserRemoved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := membershipPayload(t, tt.wire, "user1", "chan1")

			event, err := Normalize(raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, event.Kind)
			assert.Equal(t, "user1", event.UserID)
			assert.Equal(t, "chan1", event.ChannelID)
		})
	}
}

func TestNormalize_PostAndChannelEvents(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want domain.EventKind
	}{
		{name: "post edited", wire: wirePostEdited, want: domain.EventPostEditedOrDeleted},
		{name: "post deleted", wire: wirePostDeleted, want: domain.EventPostEditedOrDeleted},
		{name: "channel updated", wire: wireChannelUpdated, want: domain.EventChannelUpdated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := envelopePayload(t, tt.wire, nil, "chan1")

			event, err := Normalize(raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, event.Kind)
			assert.Equal(t, "chan1", event.ChannelID)
		})
	}
}

func TestNormalize_UnknownEventIgnored(t *testing.T) {
	raw := envelopePayload(t, "typing", map[string]any{"user_id": "user1"}, "chan1")

	event, err := Normalize(raw)

	require.NoError(t, err)
	assert.Equal(t, domain.EventIgnored, event.Kind)
}

func TestNormalize_Malformed(t *testing.T) {
	badStage := newIncident("inc1", "team1", "chan1", 100)
	badStage.ActiveStage = 5

	noID := newIncident("", "team1", "chan1", 100)

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "not json", raw: []byte("{nope")},
		{name: "missing event field", raw: []byte(`{"data":{}}`)},
		{name: "created without payload", raw: envelopePayload(t, wireIncidentCreated, map[string]any{}, "")},
		{name: "created payload not json", raw: envelopePayload(t, wireIncidentCreated, map[string]any{"payload": "{oops"}, "")},
		{name: "updated payload not json", raw: envelopePayload(t, wireIncidentUpdated, map[string]any{"payload": "[1,2"}, "")},
		{name: "incident missing id", raw: createdPayload(t, noID, "tok")},
		{name: "active stage out of range", raw: updatedPayload(t, badStage)},
		{name: "membership missing user", raw: envelopePayload(t, wireUserAdded, map[string]any{}, "chan1")},
		{name: "membership missing channel", raw: membershipPayload(t, wireUserRemoved, "user1", "")},
		{name: "post event missing channel", raw: envelopePayload(t, wirePostDeleted, nil, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		})
	}
}
