package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// ProgramNotifier forwards controller failures into a running bubbletea
// program as notices. The program is attached after construction
// because the controller needs the notifier before the program exists.
type ProgramNotifier struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewProgramNotifier creates a detached notifier; notices are dropped
// until Attach is called.
func NewProgramNotifier() *ProgramNotifier {
	return &ProgramNotifier{}
}

// Attach binds the notifier to a running program.
func (n *ProgramNotifier) Attach(program *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = program
}

// StartTimedOut surfaces an unconfirmed start-incident request.
func (n *ProgramNotifier) StartTimedOut(_, teamID string) {
	n.send(fmt.Sprintf("incident start on %s was not confirmed", teamID))
}

// FetchFailed surfaces a rejected fetch; the panel keeps showing the
// last known-good data.
func (n *ProgramNotifier) FetchFailed(teamID string, err error) {
	n.send(fmt.Sprintf("refresh for %s failed: %v", teamID, err))
}

func (n *ProgramNotifier) send(text string) {
	n.mu.Lock()
	program := n.program
	n.mu.Unlock()
	if program != nil {
		program.Send(MsgNotice{Text: text})
	}
}

var _ domain.Notifier = (*ProgramNotifier)(nil)
