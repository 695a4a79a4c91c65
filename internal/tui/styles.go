package tui

import "github.com/charmbracelet/lipgloss"

// Colors match the calendar in components/habits.
var (
	accent = lipgloss.Color("42")
	muted  = lipgloss.Color("240")
	alert  = lipgloss.Color("196")
	notice = lipgloss.Color("214")
)

var (
	docStyle = lipgloss.NewStyle().Padding(1, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(accent).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(accent).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(muted).
				Border(lipgloss.HiddenBorder(), false, false, true, false).
				Padding(0, 1)

	statusStyle  = lipgloss.NewStyle().Foreground(accent).Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Foreground(notice).Padding(0, 1)
	dangerStyle  = lipgloss.NewStyle().Foreground(alert).Bold(true)
)
