package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/metrics"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/tracker"
	"github.com/julianstephens/streakly/internal/tui/components/habits"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateLogAmount:
		return m.updateForm(msg)
	case constants.StateConfirmClear:
		return m.updateConfirmClear(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.habitsModel.Filtering() {
			if handled, cmd := m.handleGlobalKeys(msg); handled {
				return m, cmd
			}
		}
	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{
			Frequency: models.FrequencyDaily,
			Target:    "1",
			Unit:      models.UnitTimes,
		}
		m.form = NewHabitForm(m.habitForm)
		m.previousState = m.state
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habits.LogHabitMsg:
		if !msg.Continuous {
			m.logCompletion(msg.ID, 0)
			return m, nil
		}
		m.logTarget = msg
		m.logForm = &LogFormModel{}
		m.form = NewLogForm(m.logForm, msg.Name, msg.Unit)
		m.previousState = m.state
		m.state = constants.StateLogAmount
		return m, m.form.Init()

	case habits.ArchiveHabitMsg:
		m.report(m.tracker.Archive(msg.ID), "Archived habit")
		m.refresh()
		return m, nil

	case habits.RestoreHabitMsg:
		m.report(m.tracker.Restore(msg.ID), "Restored habit")
		m.refresh()
		return m, nil
	}

	if m.state == constants.StateStats {
		return m, nil
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

// handleGlobalKeys handles keys shared by every tab.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.switchTab(1)
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.switchTab(-1)
		return true, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.Clear):
		m.previousState = m.state
		m.state = constants.StateConfirmClear
		return true, nil
	}
	return false, nil
}

var tabOrder = []constants.SessionState{constants.StateActive, constants.StateArchived, constants.StateStats}

func (m *Model) switchTab(step int) {
	i := 0
	for j, s := range tabOrder {
		if s == m.state {
			i = j
		}
	}
	m.state = tabOrder[(i+step+len(tabOrder))%len(tabOrder)]
	m.status = ""
	m.refresh()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateAddHabit {
			m.submitHabit()
		} else {
			m.submitLog()
		}
		m.state = m.previousState
		m.refresh()
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m *Model) submitHabit() {
	fm := m.habitForm
	target, err := parseTarget(fm.Target)
	if err != nil {
		m.warning = err.Error()
		return
	}
	h, err := m.tracker.AddHabit(fm.Name, fm.Frequency, target, fm.Unit)
	m.report(err, fmt.Sprintf("Added %s", h.Name))
}

func (m *Model) submitLog() {
	amount, err := tracker.ParseAmount(m.logForm.Amount)
	if err != nil {
		m.report(err, "")
		return
	}
	m.logCompletion(m.logTarget.ID, amount)
}

func (m *Model) logCompletion(id string, amount float64) {
	h, err := m.tracker.LogCompletion(id, amount)
	m.report(err, fmt.Sprintf("Logged %s: %s", h.Name, metrics.HabitProgress(h, m.tracker.Now()).Label))
	m.refresh()
}

func (m Model) updateConfirmClear(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Confirm):
		m.state = m.previousState
		m.report(m.tracker.ClearAll(), "Cleared all habits")
		m.refresh()
	case key.Matches(k, m.keys.Cancel):
		m.state = m.previousState
	}
	return m, nil
}

// report shows success on the status line. Persistence failures leave the
// change in memory, so they are surfaced as a warning instead of an error.
func (m *Model) report(err error, success string) {
	switch {
	case err == nil:
		m.status = success
		m.warning = ""
	case apperrors.IsPersistence(err):
		m.status = success
		m.warning = apperrors.Warning(err)
	default:
		m.status = ""
		m.warning = apperrors.Format(err)
	}
}
