package habits

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakly/internal/metrics"
	"github.com/julianstephens/streakly/internal/models"
)

var today = time.Date(2024, time.February, 14, 10, 0, 0, 0, time.UTC)

func sampleHabits() []models.Habit {
	return []models.Habit{
		{
			ID: "h1", Name: "Water", Frequency: models.FrequencyDaily,
			TargetValue: 2, TargetUnit: models.UnitTimes,
			Completions: models.Completions{"2024-02-14": {Count: 1, TotalValue: 1}},
		},
		{
			ID: "h2", Name: "Run", Frequency: models.FrequencyDaily,
			TargetValue: 5, TargetUnit: "km",
			Completions: models.Completions{},
		},
	}
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestItemText(t *testing.T) {
	m := New(sampleHabits(), today, false, 80, 20)
	item := m.list.Items()[0].(Item)

	assert.Equal(t, "○ Water (daily) (Today: 1 times)", item.Title())
	assert.Contains(t, item.Description(), "1/2 completions")

	archived := Item{Habit: models.Habit{Name: "Old", IsArchived: true}, Label: "Old (daily)"}
	assert.Equal(t, "[ARCHIVED] Old (daily)", archived.Title())
}

func TestUpdateEmitsMessages(t *testing.T) {
	m := New(sampleHabits(), today, false, 80, 20)

	_, cmd := m.Update(keyMsg('a'))
	require.NotNil(t, cmd)
	assert.Equal(t, AddHabitMsg{}, cmd())

	_, cmd = m.Update(keyMsg('l'))
	require.NotNil(t, cmd)
	assert.Equal(t, LogHabitMsg{ID: "h1", Name: "Water", Unit: models.UnitTimes, Continuous: false}, cmd())

	_, cmd = m.Update(keyMsg('x'))
	require.NotNil(t, cmd)
	assert.Equal(t, ArchiveHabitMsg{ID: "h1"}, cmd())
}

func TestRestoreOnlyForArchived(t *testing.T) {
	archived := sampleHabits()[:1]
	archived[0].IsArchived = true
	m := New(archived, today, true, 80, 20)

	_, cmd := m.Update(keyMsg('r'))
	require.NotNil(t, cmd)
	assert.Equal(t, RestoreHabitMsg{ID: "h1"}, cmd())

	// Logging an archived habit does nothing
	_, cmd = m.Update(keyMsg('l'))
	if cmd != nil {
		_, isLog := cmd().(LogHabitMsg)
		assert.False(t, isLog)
	}
}

func TestEmptyViews(t *testing.T) {
	assert.Contains(t, New(nil, today, false, 80, 20).View(), "Press 'a'")
	assert.Contains(t, New(nil, today, true, 80, 20).View(), "No archived habits")
}

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{0, 50, 100} {
		assert.Equal(t, 20, lipgloss.Width(ProgressBar(pct, 20)))
	}
}

func TestCalendar(t *testing.T) {
	month := metrics.CalendarMonth(sampleHabits(), 2024, time.February)
	out := Calendar(month, "2024-02-14")

	assert.Contains(t, out, "February 2024")
	assert.Contains(t, out, "Su Mo Tu We Th Fr Sa")
	assert.Contains(t, out, "29")
	// Header, weekday row and five week rows
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 7)
}

func TestStatsTable(t *testing.T) {
	out := StatsTable([]metrics.Series{{Name: "Read", MaxDailyCount: 3, ConsistencyRate: 66.7, LongestStreak: 2}})
	assert.Contains(t, out, "Read")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "2 days")
	assert.Contains(t, out, "Consistency")
}
