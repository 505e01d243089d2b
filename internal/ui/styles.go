package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds all the UI styles
type Styles struct {
	Title     lipgloss.Style
	Normal    lipgloss.Style
	Meta      lipgloss.Style
	Card      lipgloss.Style
	Summary   lipgloss.Style
	Help      lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
}

// DefaultStyles returns the default style set
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),

		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),

		Meta: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#737373")),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#44475A")).
			Padding(1, 2),

		Summary: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C4C6CF")).
			PaddingLeft(2),

		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#737373")).
			Italic(true),

		Highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575")),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")),
	}
}
