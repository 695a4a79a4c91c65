package habits

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/tracker"
)

var now = time.Date(2024, time.March, 6, 9, 30, 0, 0, time.UTC)

func setupTestContext(t *testing.T) *cli.Context {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habits.json")
	return cli.NewContext(
		config.Config{Store: path, Location: time.UTC},
		storage.NewJSONStore(path),
		tracker.WithClock(func() time.Time { return now }),
	)
}

func TestAddAndList(t *testing.T) {
	ctx := setupTestContext(t)

	require.NoError(t, (&AddCmd{Name: "Read", Frequency: "daily", Target: 2, Unit: "times"}).Run(ctx))
	require.NoError(t, (&AddCmd{Name: "Run", Frequency: "weekly", Target: 5, Unit: "km"}).Run(ctx))

	habits := ctx.Tracker.Habits()
	require.Len(t, habits, 2)
	assert.Equal(t, "Run", habits[1].Name)
	assert.Equal(t, 5.0, habits[1].TargetValue)

	assert.NoError(t, (&ListCmd{}).Run(ctx))
	assert.NoError(t, (&ListCmd{Archived: true}).Run(ctx))
}

func TestAddRejectsEmptyName(t *testing.T) {
	ctx := setupTestContext(t)
	err := (&AddCmd{Name: "  ", Frequency: "daily", Target: 1, Unit: "times"}).Run(ctx)
	assert.True(t, apperrors.IsValidation(err))
}

func TestLog(t *testing.T) {
	ctx := setupTestContext(t)
	require.NoError(t, (&AddCmd{Name: "Read", Frequency: "daily", Target: 2, Unit: "times"}).Run(ctx))
	require.NoError(t, (&AddCmd{Name: "Run", Frequency: "daily", Target: 5, Unit: "km"}).Run(ctx))

	require.NoError(t, (&LogCmd{Habit: "read"}).Run(ctx))
	require.NoError(t, (&LogCmd{Habit: "Read", Amount: "ignored"}).Run(ctx))

	read, err := cli.FindHabit(ctx.Tracker.Habits(), "Read")
	require.NoError(t, err)
	entry := read.Completions["2024-03-06"]
	assert.Equal(t, 2, entry.Count)
	assert.Equal(t, 2.0, entry.TotalValue)

	assert.Error(t, (&LogCmd{Habit: "Run"}).Run(ctx))
	assert.True(t, apperrors.IsValidation((&LogCmd{Habit: "Run", Amount: "-5"}).Run(ctx)))
	require.NoError(t, (&LogCmd{Habit: "Run", Amount: "2.5"}).Run(ctx))

	run, err := cli.FindHabit(ctx.Tracker.Habits(), "Run")
	require.NoError(t, err)
	assert.Equal(t, 2.5, run.Completions["2024-03-06"].TotalValue)

	assert.True(t, apperrors.IsNotFound((&LogCmd{Habit: "Swim"}).Run(ctx)))
}

func TestArchiveAndRestore(t *testing.T) {
	ctx := setupTestContext(t)
	require.NoError(t, (&AddCmd{Name: "Read", Frequency: "daily", Target: 1, Unit: "times"}).Run(ctx))

	require.NoError(t, (&ArchiveCmd{Habit: "Read"}).Run(ctx))
	assert.Empty(t, ctx.Tracker.Active())
	assert.Len(t, ctx.Tracker.Archived(), 1)

	// Already archived habits are not archive targets
	assert.True(t, apperrors.IsNotFound((&ArchiveCmd{Habit: "Read"}).Run(ctx)))

	require.NoError(t, (&RestoreCmd{Habit: "Read"}).Run(ctx))
	assert.Len(t, ctx.Tracker.Active(), 1)
}

func TestReadOnlyCommands(t *testing.T) {
	ctx := setupTestContext(t)
	assert.NoError(t, (&ProgressCmd{}).Run(ctx))
	assert.NoError(t, (&StatsCmd{}).Run(ctx))

	require.NoError(t, (&AddCmd{Name: "Read", Frequency: "daily", Target: 1, Unit: "times"}).Run(ctx))
	require.NoError(t, (&LogCmd{Habit: "Read"}).Run(ctx))

	assert.NoError(t, (&ProgressCmd{}).Run(ctx))
	assert.NoError(t, (&ProgressCmd{Habit: "Read"}).Run(ctx))
	assert.NoError(t, (&StatsCmd{}).Run(ctx))
	assert.NoError(t, (&CalendarCmd{}).Run(ctx))
	assert.NoError(t, (&CalendarCmd{Month: "2024-02"}).Run(ctx))
	assert.Error(t, (&CalendarCmd{Month: "Feb 2024"}).Run(ctx))
}

func TestSnooze(t *testing.T) {
	ctx := setupTestContext(t)
	require.NoError(t, (&AddCmd{Name: "Water", Frequency: "daily", Target: 8, Unit: "times"}).Run(ctx))
	require.Len(t, ctx.Tracker.DueReminders(now), 1)

	require.NoError(t, (&SnoozeCmd{Habit: "Water", For: 30 * time.Minute}).Run(ctx))
	assert.Empty(t, ctx.Tracker.DueReminders(now))
	assert.Len(t, ctx.Tracker.DueReminders(now.Add(31*time.Minute)), 1)

	assert.Error(t, (&SnoozeCmd{Habit: "Water", For: 0}).Run(ctx))
}

func TestClearWithYes(t *testing.T) {
	ctx := setupTestContext(t)
	require.NoError(t, (&AddCmd{Name: "Read", Frequency: "daily", Target: 1, Unit: "times"}).Run(ctx))

	require.NoError(t, (&ClearCmd{Yes: true}).Run(ctx))
	assert.Empty(t, ctx.Tracker.Habits())

	raw, err := ctx.Gateway.LoadRaw()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestParseMonth(t *testing.T) {
	y, m, err := parseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.March, m)

	y, m, err = parseMonth("2023-12", now)
	require.NoError(t, err)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.December, m)

	_, _, err = parseMonth("2023-13", now)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Read", truncate("Read", 10))
	assert.Equal(t, "Drink mo...", truncate("Drink more water", 11))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "12345678", shortID("123456789abc"))
}
