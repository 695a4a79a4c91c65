package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/tui/components/habits"
	"github.com/julianstephens/streakly/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateActive, constants.StateArchived:
		content = docStyle.Render(m.habitsModel.View())
	case constants.StateStats:
		content = m.viewStats()
	case constants.StateAddHabit, constants.StateLogAmount:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmClear:
		content = m.viewConfirmClear()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	titles := []string{"Active", "Archived", "Stats"}
	current := m.listState()

	var tabs []string
	for i, title := range titles {
		if tabOrder[i] == current {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStats() string {
	now := m.tracker.Now()
	series := m.tracker.Series()
	if len(series) == 0 {
		return docStyle.Render("No habits to chart yet.")
	}
	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		habits.StatsTable(series),
		"",
		habits.Calendar(m.tracker.Calendar(now.Year(), now.Month()), utils.DayKey(now)),
	))
}

func (m Model) viewConfirmClear() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete every habit and its history?"),
			"This cannot be undone.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewStatus() string {
	switch {
	case m.warning != "":
		return warningStyle.Render(m.warning)
	case m.status != "":
		return statusStyle.Render(m.status)
	case m.conflicts > 0:
		return m.viewConflictBanner()
	}
	return ""
}

func (m Model) viewConflictBanner() string {
	return warningStyle.Render(fmt.Sprintf("%d habit conflict(s) found. Run '%s validate' for details.", m.conflicts, constants.AppName))
}
