package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used by the view
type Theme struct {
	Accent  lipgloss.Color
	Subtle  lipgloss.Color
	Header  lipgloss.Style
	Label   lipgloss.Style
	Focused lipgloss.Style
	Value   lipgloss.Style
	Chosen  lipgloss.Style
	Panel   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Helper  lipgloss.Style
}

func NewTheme() Theme {
	accent := lipgloss.Color("33")
	subtle := lipgloss.Color("245")

	return Theme{
		Accent:  accent,
		Subtle:  subtle,
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).MarginBottom(1),
		Label:   lipgloss.NewStyle().Foreground(subtle).Width(16),
		Focused: lipgloss.NewStyle().Foreground(accent).Bold(true).Width(16),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Chosen:  lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(accent).Bold(true).Padding(0, 1),
		Panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Helper:  lipgloss.NewStyle().Foreground(subtle),
	}
}
