// Package tui renders the incident panel in a terminal. It is a
// development surface: the same controller that backs it drives the
// production webapp, and the panel lets scenarios and live event
// streams be watched interactively.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/incidentkit/incident-sync/internal/core"
	"github.com/incidentkit/incident-sync/internal/domain"
)

// Model is the bubbletea model for the incident panel.
type Model struct {
	controller *core.Controller
	keys       KeyMap
	styles     Styles

	// changes is fed by the controller's state-change listener; a
	// pending waitForChange command drains it.
	changes chan struct{}
	remove  func()

	state     domain.ViewState
	incidents []*domain.Incident
	viewCtx   domain.ViewContext

	cursor   int
	notice   string
	showHelp bool

	width  int
	height int
}

// New creates a panel bound to the controller. The model subscribes to
// state changes; quitting removes the subscription.
func New(controller *core.Controller) Model {
	m := Model{
		controller: controller,
		keys:       DefaultKeyMap(),
		styles:     DefaultStyles(),
		changes:    make(chan struct{}, 1),
	}
	m.remove = controller.OnStateChange(m.signal)
	return m.refreshed()
}

func (m Model) signal() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Init starts listening for controller state changes.
func (m Model) Init() tea.Cmd {
	return m.waitForChange
}

// waitForChange blocks until the controller signals, then surfaces the
// change as a message. Update re-arms it after every delivery.
func (m Model) waitForChange() tea.Msg {
	<-m.changes
	return MsgStateChanged{}
}

// refreshed re-reads the controller's visible state and working set.
func (m Model) refreshed() Model {
	m.state = m.controller.VisibleState()
	m.incidents = m.controller.ActiveIncidents()
	m.viewCtx = m.controller.ViewContext()
	if m.cursor >= len(m.incidents) {
		m.cursor = len(m.incidents) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case MsgStateChanged:
		return m.refreshed(), m.waitForChange

	case MsgNotice:
		m.notice = msg.Text
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.remove()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.state.Kind == domain.ViewList && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.state.Kind == domain.ViewList && m.cursor < len(m.incidents)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.state.Kind == domain.ViewList && m.cursor < len(m.incidents) {
			m.controller.NavigateToDetail(m.incidents[m.cursor].ID)
		}
		return m.refreshed(), nil

	case key.Matches(msg, m.keys.Back):
		m.controller.NavigateToList()
		return m.refreshed(), nil

	case key.Matches(msg, m.keys.Toggle):
		if m.state.Kind == domain.ViewHidden {
			m.controller.Open()
		} else {
			m.controller.Close()
		}
		return m.refreshed(), nil

	case key.Matches(msg, m.keys.Reconnect):
		m.notice = ""
		m.controller.Reconnect()
		return m, nil
	}
	return m, nil
}

// Selected returns the incident under the cursor, or nil.
func (m Model) Selected() *domain.Incident {
	if m.cursor < len(m.incidents) {
		return m.incidents[m.cursor]
	}
	return nil
}
