package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/incidentkit/incident-sync/internal/domain"
	"github.com/stretchr/testify/require"
)

// newIncident builds a minimal active incident for tests.
func newIncident(id, teamID, channelID string, createAt int64) *domain.Incident {
	return &domain.Incident{
		ID:              id,
		Name:            "incident " + id,
		TeamID:          teamID,
		ChannelID:       channelID,
		CommanderUserID: "commander1",
		IsActive:        true,
		CreateAt:        createAt,
		Checklists: []domain.Checklist{
			{Title: "Triage", Items: []domain.ChecklistItem{
				{Title: "Assess impact"},
				{Title: "Page on-call", State: domain.ChecklistItemClosed},
			}},
		},
	}
}

// ended returns a copy of the incident marked ended at the given time.
func ended(record *domain.Incident, endAt int64) *domain.Incident {
	out := record.Clone()
	out.IsActive = false
	out.EndAt = endAt
	return out
}

// createdPayload builds a raw incident-created transport message.
func createdPayload(t *testing.T, record *domain.Incident, clientToken string) []byte {
	t.Helper()
	inner, err := json.Marshal(map[string]any{
		"client_id": clientToken,
		"incident":  record,
	})
	require.NoError(t, err)
	return envelopePayload(t, wireIncidentCreated, map[string]any{"payload": string(inner)}, "")
}

// updatedPayload builds a raw incident-updated transport message.
func updatedPayload(t *testing.T, record *domain.Incident) []byte {
	t.Helper()
	inner, err := json.Marshal(record)
	require.NoError(t, err)
	return envelopePayload(t, wireIncidentUpdated, map[string]any{"payload": string(inner)}, "")
}

// membershipPayload builds a raw user_added/user_removed message.
func membershipPayload(t *testing.T, event, userID, channelID string) []byte {
	t.Helper()
	return envelopePayload(t, event, map[string]any{"user_id": userID}, channelID)
}

func envelopePayload(t *testing.T, event string, data map[string]any, broadcastChannel string) []byte {
	t.Helper()
	msg := map[string]any{"event": event}
	if data != nil {
		msg["data"] = data
	}
	if broadcastChannel != "" {
		msg["broadcast"] = map[string]any{"channel_id": broadcastChannel}
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return raw
}

// waitSignal blocks until the channel signals or the test times out.
func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state change")
	}
}

// collectStateChanges subscribes a buffered signal channel to the
// controller's state-change notifications.
func collectStateChanges(c *Controller) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 64)
	remove := c.OnStateChange(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch, remove
}
