package replay

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// Scenario is a scripted session: fixture data the scripted service
// answers with, an initial view context, and an ordered list of steps.
type Scenario struct {
	Name      string                    `yaml:"name"`
	View      View                      `yaml:"view"`
	Snapshots map[string][]IncidentSpec `yaml:"snapshots"`
	Channels  map[string]IncidentSpec   `yaml:"channels"`
	Steps     []Step                    `yaml:"steps"`

	// dir resolves relative events_file paths against the scenario file.
	dir string
}

// View identifies where the client is looking.
type View struct {
	TeamID    string `yaml:"team_id"`
	ChannelID string `yaml:"channel_id"`
	UserID    string `yaml:"user_id"`
}

// Step is one scripted action. Exactly one field should be set; Run
// rejects steps that set none.
type Step struct {
	// View switches the view context.
	View *View `yaml:"view,omitempty"`
	// Event injects a single raw transport payload.
	Event string `yaml:"event,omitempty"`
	// EventsFile injects every payload from a JSONL file, in order.
	EventsFile string `yaml:"events_file,omitempty"`
	// Action is one of "open", "close", "back", "reconnect".
	Action string `yaml:"action,omitempty"`
	// Select navigates to the detail view of an incident by id.
	Select string `yaml:"select,omitempty"`
}

// IncidentSpec is the YAML shape of a fixture incident.
type IncidentSpec struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	TeamID    string   `yaml:"team_id"`
	ChannelID string   `yaml:"channel_id"`
	Commander string   `yaml:"commander"`
	IsActive  bool     `yaml:"is_active"`
	CreateAt  int64    `yaml:"create_at"`
	EndAt     int64    `yaml:"end_at"`
	Stage     int      `yaml:"stage"`
	Stages    []string `yaml:"stages"`
}

func (s IncidentSpec) toDomain() *domain.Incident {
	record := &domain.Incident{
		ID:              s.ID,
		Name:            s.Name,
		TeamID:          s.TeamID,
		ChannelID:       s.ChannelID,
		CommanderUserID: s.Commander,
		IsActive:        s.IsActive,
		CreateAt:        s.CreateAt,
		EndAt:           s.EndAt,
		ActiveStage:     s.Stage,
	}
	for _, title := range s.Stages {
		record.Checklists = append(record.Checklists, domain.Checklist{Title: title})
	}
	return record
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := scenario.validate(); err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

func (s *Scenario) validate() error {
	if s.View.TeamID == "" {
		return fmt.Errorf("%w: scenario view requires team_id", domain.ErrValidation)
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	set := 0
	if s.View != nil {
		set++
	}
	if s.Event != "" {
		set++
	}
	if s.EventsFile != "" {
		set++
	}
	if s.Action != "" {
		switch s.Action {
		case "open", "close", "back", "reconnect":
		default:
			return fmt.Errorf("%w: unknown action %q", domain.ErrValidation, s.Action)
		}
		set++
	}
	if s.Select != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: step must set exactly one of view, event, events_file, action, select", domain.ErrValidation)
	}
	return nil
}
