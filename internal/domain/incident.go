// Package domain contains the core types and port interfaces for the
// incident synchronization client.
package domain

import "sort"

// Checklist item states. The wire format stores the open state as an
// empty string, matching the server.
const (
	ChecklistItemOpen   = ""
	ChecklistItemClosed = "Closed"
)

// ChecklistItem is a single task inside a checklist stage.
type ChecklistItem struct {
	Title            string `json:"title"`
	State            string `json:"state"`
	AssigneeID       string `json:"assignee_id,omitempty"`
	Command          string `json:"command,omitempty"`
	CommandLastRunAt int64  `json:"command_last_run_at,omitempty"`
}

// Checklist is one ordered stage of tasks within an incident.
type Checklist struct {
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}

// Clone returns a deep copy of the checklist.
func (c Checklist) Clone() Checklist {
	out := c
	out.Items = append([]ChecklistItem(nil), c.Items...)
	return out
}

// Incident is one tracked incident visible to the current user.
// Timestamps are epoch milliseconds; EndAt is 0 while the incident is
// active. A channel hosts at most one incident.
type Incident struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	TeamID          string      `json:"team_id"`
	ChannelID       string      `json:"channel_id"`
	CommanderUserID string      `json:"commander_user_id"`
	IsActive        bool        `json:"is_active"`
	CreateAt        int64       `json:"create_at"`
	EndAt           int64       `json:"end_at"`
	ActiveStage     int         `json:"active_stage"`
	Checklists      []Checklist `json:"checklists"`
}

// Clone returns a deep copy of the incident.
func (i *Incident) Clone() *Incident {
	out := *i
	if i.Checklists != nil {
		out.Checklists = make([]Checklist, len(i.Checklists))
		for j, c := range i.Checklists {
			out.Checklists[j] = c.Clone()
		}
	}
	return &out
}

// IsValid reports whether the incident satisfies the structural
// invariants required before it may enter the index: non-empty scope
// keys and an active stage inside the checklist bounds.
func (i *Incident) IsValid() bool {
	if i.ID == "" || i.TeamID == "" || i.ChannelID == "" {
		return false
	}
	if len(i.Checklists) > 0 && (i.ActiveStage < 0 || i.ActiveStage >= len(i.Checklists)) {
		return false
	}
	return true
}

// Ended reports whether the incident has an end timestamp.
func (i *Incident) Ended() bool {
	return i.EndAt > 0
}

// SortByCreateAtDesc orders incidents newest first, ties broken by ID
// for a stable user-facing listing.
func SortByCreateAtDesc(incidents []*Incident) {
	sort.SliceStable(incidents, func(a, b int) bool {
		if incidents[a].CreateAt != incidents[b].CreateAt {
			return incidents[a].CreateAt > incidents[b].CreateAt
		}
		return incidents[a].ID < incidents[b].ID
	})
}
