package habits

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakly/internal/metrics"
	"github.com/julianstephens/streakly/internal/models"
)

type AddHabitMsg struct{}

// LogHabitMsg asks for one completion. Continuous habits need an amount first.
type LogHabitMsg struct {
	ID         string
	Name       string
	Unit       models.TargetUnit
	Continuous bool
}

type ArchiveHabitMsg struct {
	ID string
}

type RestoreHabitMsg struct {
	ID string
}

type Item struct {
	Habit    models.Habit
	Label    string
	Progress metrics.Progress
}

func (i Item) Title() string {
	if i.Habit.IsArchived {
		return "[ARCHIVED] " + i.Label
	}
	if i.Progress.Percent >= 100 {
		return "✓ " + i.Label
	}
	return "○ " + i.Label
}

func (i Item) Description() string {
	if i.Habit.IsArchived {
		return "archived, restore with 'r'"
	}
	return ProgressBar(i.Progress.Percent, barWidth) + " " + i.Progress.Label
}

func (i Item) FilterValue() string { return i.Habit.Name }

const barWidth = 24

type KeyMap struct {
	Add     key.Binding
	Log     key.Binding
	Archive key.Binding
	Restore key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Log: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "log"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
	}
}

type Model struct {
	list     list.Model
	keys     KeyMap
	archived bool
}

// New builds the list. archived selects which view the list shows; it only
// changes the empty-state text and which actions are offered.
func New(habits []models.Habit, today time.Time, archived bool, width, height int) Model {
	l := list.New(items(habits, today), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Log, keys.Archive, keys.Restore}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Log, keys.Archive, keys.Restore}
	}

	return Model{
		list:     l,
		keys:     keys,
		archived: archived,
	}
}

func items(habits []models.Habit, today time.Time) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{
			Habit:    h,
			Label:    metrics.TodayLabel(h, today),
			Progress: metrics.HabitProgress(h, today),
		}
	}
	return out
}

func (m *Model) SetHabits(habits []models.Habit, today time.Time, archived bool) {
	m.archived = archived
	m.list.SetItems(items(habits, today))
}

// Selected returns the highlighted habit.
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Habit, ok
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Log):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Habit.IsArchived {
				h := i.Habit
				return m, func() tea.Msg {
					return LogHabitMsg{ID: h.ID, Name: h.Name, Unit: h.TargetUnit, Continuous: !h.IsDiscrete()}
				}
			}
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Habit.IsArchived {
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Restore):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Habit.IsArchived {
				return m, func() tea.Msg { return RestoreHabitMsg{ID: i.Habit.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		if m.archived {
			return "\n  No archived habits."
		}
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
