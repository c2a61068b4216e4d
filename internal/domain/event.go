package domain

// EventKind discriminates normalized transport events.
type EventKind string

// Normalized event kinds. Unrecognized transport payloads map to
// EventIgnored and are dropped downstream without logging noise.
const (
	EventIncidentCreated     EventKind = "incident_created"
	EventIncidentUpdated     EventKind = "incident_updated"
	EventUserAdded           EventKind = "user_added"
	EventUserRemoved         EventKind = "user_removed"
	EventPostEditedOrDeleted EventKind = "post_edited_or_deleted"
	EventChannelUpdated      EventKind = "channel_updated"
	EventIgnored             EventKind = "ignored"
)

// Event is a normalized push-transport event. Which fields are set
// depends on Kind: incident events carry Incident (and, for the
// requesting client only, ClientToken on creation); membership and
// channel events carry ChannelID and, for user events, UserID.
type Event struct {
	Incident    *Incident
	Kind        EventKind
	ClientToken string
	ChannelID   string
	UserID      string
}
