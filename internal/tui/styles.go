package tui

import "github.com/charmbracelet/lipgloss"

// Colors defines the color palette for the panel.
var Colors = struct {
	Primary  lipgloss.Color
	Muted    lipgloss.Color
	Error    lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Selected lipgloss.Color
	Text     lipgloss.Color
}{
	Primary:  lipgloss.Color("#6C5CE7"), // Purple
	Muted:    lipgloss.Color("#636E72"), // Gray
	Error:    lipgloss.Color("#D63031"), // Red
	Success:  lipgloss.Color("#00B894"), // Green
	Warning:  lipgloss.Color("#FDCB6E"), // Yellow
	Selected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	Text:     lipgloss.Color("#DFE6E9"), // Light gray
}

// Styles contains all the lipgloss styles for the panel.
type Styles struct {
	App    lipgloss.Style
	Header lipgloss.Style

	ItemNormal   lipgloss.Style
	ItemSelected lipgloss.Style
	ItemMeta     lipgloss.Style
	Cursor       lipgloss.Style

	StageBadge  lipgloss.Style
	ActiveStage lipgloss.Style

	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style

	ItemDone lipgloss.Style
	ItemOpen lipgloss.Style

	Notice lipgloss.Style
	Hint   lipgloss.Style

	Footer    lipgloss.Style
	FooterKey lipgloss.Style
}

// DefaultStyles returns the default styles for the panel.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		ItemNormal: lipgloss.NewStyle().
			Foreground(Colors.Text),

		ItemSelected: lipgloss.NewStyle().
			Foreground(Colors.Selected).
			Bold(true),

		ItemMeta: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Cursor: lipgloss.NewStyle().
			Foreground(Colors.Selected).
			Bold(true),

		StageBadge: lipgloss.NewStyle().
			Foreground(Colors.Warning),

		ActiveStage: lipgloss.NewStyle().
			Foreground(Colors.Warning).
			Bold(true),

		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		DetailLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(11),

		DetailValue: lipgloss.NewStyle(),

		ItemDone: lipgloss.NewStyle().
			Foreground(Colors.Success),

		ItemOpen: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Notice: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		Hint: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Italic(true),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			MarginTop(1),

		FooterKey: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),
	}
}
