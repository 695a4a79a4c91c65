// Package tui is the interactive habit dashboard.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/tracker"
	"github.com/julianstephens/streakly/internal/tui/components/habits"
	"github.com/julianstephens/streakly/internal/validation"
)

type HabitFormModel struct {
	Name      string
	Frequency models.Frequency
	Target    string
	Unit      models.TargetUnit
}

type LogFormModel struct {
	Amount string
}

type Model struct {
	tracker       *tracker.Tracker
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	habitsModel   habits.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	logForm       *LogFormModel
	logTarget     habits.LogHabitMsg
	quitting      bool
	width         int
	height        int
	status        string
	warning       string
	conflicts     int
}

func NewModel(t *tracker.Tracker) Model {
	m := Model{
		tracker:     t,
		state:       constants.StateActive,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(t.Active(), t.Now(), false, 0, 0),
	}
	m.countConflicts()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// listState is the tab underneath any open form or prompt.
func (m Model) listState() constants.SessionState {
	switch m.state {
	case constants.StateActive, constants.StateArchived, constants.StateStats:
		return m.state
	}
	return m.previousState
}

// refresh reloads the list from the tracker after a change.
func (m *Model) refresh() {
	archived := m.listState() == constants.StateArchived
	list := m.tracker.Active()
	if archived {
		list = m.tracker.Archived()
	}
	m.habitsModel.SetHabits(list, m.tracker.Now(), archived)
	m.countConflicts()
}

func (m *Model) countConflicts() {
	result := validation.New().ValidateHabits(m.tracker.Habits(), m.tracker.Now())
	m.conflicts = len(result.Conflicts)
}

func (m *Model) resize() {
	h, v := docStyle.GetFrameSize()
	// tabs, status line and help
	m.habitsModel.SetSize(m.width-h, m.height-v-4)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	hk := habits.DefaultKeyMap()
	switch m.state {
	case constants.StateActive:
		keys = append(keys, hk.Add, hk.Log, hk.Archive)
	case constants.StateArchived:
		keys = append(keys, hk.Restore)
	case constants.StateConfirmClear:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Clear}
	hk := habits.DefaultKeyMap()

	var actions []key.Binding
	switch m.state {
	case constants.StateActive:
		actions = []key.Binding{hk.Add, hk.Log, hk.Archive}
	case constants.StateArchived:
		actions = []key.Binding{hk.Restore}
	}
	return [][]key.Binding{global, actions}
}
