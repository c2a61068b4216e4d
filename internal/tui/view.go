package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// View renders the panel.
func (m Model) View() string {
	var b strings.Builder

	if m.showHelp {
		return m.styles.App.Render(m.renderHelp())
	}

	switch m.state.Kind {
	case domain.ViewHidden:
		b.WriteString(m.styles.Hint.Render("incident panel closed (press o to open)"))
	case domain.ViewList:
		b.WriteString(m.renderList())
	case domain.ViewDetail:
		b.WriteString(m.renderDetail())
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Notice.Render(m.notice))
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return m.styles.App.Render(b.String())
}

func (m Model) renderList() string {
	var b strings.Builder

	header := "Incidents"
	if m.viewCtx.TeamID != "" {
		header = fmt.Sprintf("Incidents: %s", m.viewCtx.TeamID)
	}
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n")

	if len(m.incidents) == 0 {
		b.WriteString(m.styles.Hint.Render("no active incidents"))
		return b.String()
	}

	for i, record := range m.incidents {
		cursor := "  "
		style := m.styles.ItemNormal
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("❯ ")
			style = m.styles.ItemSelected
		}
		line := fmt.Sprintf("%s%s %s %s",
			cursor,
			style.Render(record.Name),
			m.styles.StageBadge.Render(stageLabel(record)),
			m.styles.ItemMeta.Render(age(record.CreateAt)),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	record, ok := m.controller.Incident(m.state.IncidentID)
	if !ok {
		return m.styles.Hint.Render("incident no longer available")
	}

	var b strings.Builder
	b.WriteString(m.styles.DetailTitle.Render(record.Name))
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString(m.styles.DetailLabel.Render(label))
		b.WriteString(m.styles.DetailValue.Render(value))
		b.WriteString("\n")
	}
	field("Commander", record.CommanderUserID)
	field("Channel", record.ChannelID)
	field("Started", time.UnixMilli(record.CreateAt).Format("2006-01-02 15:04"))
	if record.Ended() {
		field("Ended", time.UnixMilli(record.EndAt).Format("2006-01-02 15:04"))
	}

	for i, checklist := range record.Checklists {
		b.WriteString("\n")
		title := checklist.Title
		if i == record.ActiveStage {
			title = m.styles.ActiveStage.Render("▸ " + title)
		} else {
			title = m.styles.ItemMeta.Render("  " + title)
		}
		b.WriteString(title)
		b.WriteString("\n")
		for _, item := range checklist.Items {
			mark := m.styles.ItemOpen.Render("○")
			if item.State == domain.ChecklistItemClosed {
				mark = m.styles.ItemDone.Render("✓")
			}
			b.WriteString(fmt.Sprintf("    %s %s\n", mark, item.Title))
		}
	}
	return b.String()
}

func (m Model) renderFooter() string {
	parts := make([]string, 0, 8)
	for _, binding := range m.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, m.styles.FooterKey.Render(help.Key)+" "+help.Desc)
	}
	return m.styles.Footer.Render(strings.Join(parts, " · "))
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Keys"))
	b.WriteString("\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			help := binding.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				m.styles.FooterKey.Render(fmt.Sprintf("%-6s", help.Key)),
				help.Desc,
			))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Hint.Render("press ? to close"))
	return b.String()
}

// stageLabel names the incident's active checklist stage.
func stageLabel(record *domain.Incident) string {
	if record.ActiveStage >= 0 && record.ActiveStage < len(record.Checklists) {
		return record.Checklists[record.ActiveStage].Title
	}
	return ""
}

// age formats how long ago a millisecond timestamp was, coarsely.
func age(createAt int64) string {
	d := time.Since(time.UnixMilli(createAt))
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
