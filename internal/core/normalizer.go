// Package core implements the client-side incident synchronization
// core: transport event normalization, correlation of locally
// initiated actions with their confirming events, the in-memory
// incident index, the panel state machine, and the controller that
// orchestrates them.
package core

import (
	"encoding/json"
	"fmt"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// Transport event names as delivered by the host platform. Incident
// events are plugin-scoped; the rest are platform events the host
// fans out to every registered handler.
const (
	wireIncidentCreated = "custom_incident_incident_created"
	wireIncidentUpdated = "custom_incident_incident_updated"
	wireUserAdded       = "user_added"
	wireUserRemoved     = "user_removed"
	wirePostEdited      = "post_edited"
	wirePostDeleted     = "post_deleted"
	wireChannelUpdated  = "channel_updated"
)

// envelope is the outer transport message. Incident payloads arrive
// double-encoded: a JSON string under data.payload.
type envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Broadcast struct {
		ChannelID string `json:"channel_id"`
	} `json:"broadcast"`
}

type incidentCreatedPayload struct {
	ClientID string           `json:"client_id"`
	Incident *domain.Incident `json:"incident"`
}

// Normalize decodes a raw transport payload into a typed event. It is
// a pure decode with no side effects. Unknown event names are not
// errors; they normalize to EventIgnored. Malformed payloads return an
// error wrapping domain.ErrInvalidPayload.
func Normalize(raw []byte) (domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Event{}, fmt.Errorf("%w: decode envelope: %v", domain.ErrInvalidPayload, err)
	}
	if env.Event == "" {
		return domain.Event{}, fmt.Errorf("%w: missing event field", domain.ErrInvalidPayload)
	}

	switch env.Event {
	case wireIncidentCreated:
		payload, err := decodeInnerPayload(env.Data)
		if err != nil {
			return domain.Event{}, err
		}
		var created incidentCreatedPayload
		if err := json.Unmarshal(payload, &created); err != nil {
			return domain.Event{}, fmt.Errorf("%w: decode created payload: %v", domain.ErrInvalidPayload, err)
		}
		if created.Incident == nil || !created.Incident.IsValid() {
			return domain.Event{}, fmt.Errorf("%w: malformed incident in created event", domain.ErrInvalidPayload)
		}
		return domain.Event{
			Kind:        domain.EventIncidentCreated,
			Incident:    created.Incident,
			ClientToken: created.ClientID,
		}, nil

	case wireIncidentUpdated:
		payload, err := decodeInnerPayload(env.Data)
		if err != nil {
			return domain.Event{}, err
		}
		var incident domain.Incident
		if err := json.Unmarshal(payload, &incident); err != nil {
			return domain.Event{}, fmt.Errorf("%w: decode updated payload: %v", domain.ErrInvalidPayload, err)
		}
		if !incident.IsValid() {
			return domain.Event{}, fmt.Errorf("%w: malformed incident in updated event", domain.ErrInvalidPayload)
		}
		return domain.Event{Kind: domain.EventIncidentUpdated, Incident: &incident}, nil

	case wireUserAdded, wireUserRemoved:
		var data struct {
			UserID string `json:"user_id"`
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return domain.Event{}, fmt.Errorf("%w: decode membership data: %v", domain.ErrInvalidPayload, err)
			}
		}
		if data.UserID == "" || env.Broadcast.ChannelID == "" {
			return domain.Event{}, fmt.Errorf("%w: membership event missing user_id or channel_id", domain.ErrInvalidPayload)
		}
		kind := domain.EventUserAdded
		if env.Event == wireUserRemoved {
			kind = domain.EventUserRemoved
		}
		return domain.Event{Kind: kind, ChannelID: env.Broadcast.ChannelID, UserID: data.UserID}, nil

	case wirePostEdited, wirePostDeleted:
		if env.Broadcast.ChannelID == "" {
			return domain.Event{}, fmt.Errorf("%w: post event missing channel_id", domain.ErrInvalidPayload)
		}
		return domain.Event{Kind: domain.EventPostEditedOrDeleted, ChannelID: env.Broadcast.ChannelID}, nil

	case wireChannelUpdated:
		if env.Broadcast.ChannelID == "" {
			return domain.Event{}, fmt.Errorf("%w: channel event missing channel_id", domain.ErrInvalidPayload)
		}
		return domain.Event{Kind: domain.EventChannelUpdated, ChannelID: env.Broadcast.ChannelID}, nil

	default:
		return domain.Event{Kind: domain.EventIgnored}, nil
	}
}

// decodeInnerPayload extracts the double-encoded JSON string under
// data.payload.
func decodeInnerPayload(data json.RawMessage) ([]byte, error) {
	var inner struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, fmt.Errorf("%w: decode data: %v", domain.ErrInvalidPayload, err)
	}
	if inner.Payload == "" {
		return nil, fmt.Errorf("%w: missing payload", domain.ErrInvalidPayload)
	}
	return []byte(inner.Payload), nil
}
