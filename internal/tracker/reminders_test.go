package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakly/internal/models"
)

func reminderIDs(rs []Reminder) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestDueReminders(t *testing.T) {
	tr, _, clock := setupTracker(t)

	water, err := tr.AddHabit("Water", models.FrequencyDaily, 2, models.UnitTimes)
	require.NoError(t, err)
	read, err := tr.AddHabit("Read", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)
	_, err = tr.AddHabit("Gym", models.FrequencyWeekly, 1, models.UnitTimes)
	require.NoError(t, err)
	_, err = tr.AddHabit("Run", models.FrequencyDaily, 5, "km")
	require.NoError(t, err)

	_, err = tr.LogCompletion(water.ID, 0)
	require.NoError(t, err)
	_, err = tr.LogCompletion(read.ID, 0)
	require.NoError(t, err)

	due := tr.DueReminders(clock.now)
	require.Len(t, due, 1)
	assert.Equal(t, Reminder{ID: water.ID, Name: "Water", Count: 1, Target: 2}, due[0])

	// A new day resets the count
	tomorrow := clock.now.Add(24 * time.Hour)
	assert.Equal(t, []string{water.ID, read.ID}, reminderIDs(tr.DueReminders(tomorrow)))
}

func TestDueRemindersDoesNotMutate(t *testing.T) {
	tr, _, clock := setupTracker(t)
	_, err := tr.AddHabit("Water", models.FrequencyDaily, 2, models.UnitTimes)
	require.NoError(t, err)

	before := tr.Habits()
	tr.DueReminders(clock.now)
	assert.Equal(t, before, tr.Habits())
}

func TestSnoozeSuppressesReminder(t *testing.T) {
	tr, gw, clock := setupTracker(t)
	h, err := tr.AddHabit("Water", models.FrequencyDaily, 2, models.UnitTimes)
	require.NoError(t, err)

	until := clock.now.Add(time.Hour)
	require.NoError(t, tr.Snooze(h.ID, until))

	assert.Empty(t, tr.DueReminders(clock.now))
	assert.Empty(t, tr.DueReminders(until.Add(-time.Second)))
	assert.Equal(t, []string{h.ID}, reminderIDs(tr.DueReminders(until)))

	got, ok := tr.SnoozedUntil(h.ID)
	assert.True(t, ok)
	assert.True(t, until.Equal(got))

	// Persisted and reloaded
	again := New(gw, WithClock(clock.Now), WithLocation(time.UTC))
	_, err = again.Load()
	require.NoError(t, err)
	assert.Empty(t, again.DueReminders(clock.now))
}

func TestSnoozePrunesExpired(t *testing.T) {
	tr, gw, clock := setupTracker(t)
	a, err := tr.AddHabit("A", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)
	b, err := tr.AddHabit("B", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)

	require.NoError(t, tr.Snooze(a.ID, clock.now.Add(time.Minute)))
	clock.now = clock.now.Add(time.Hour)
	require.NoError(t, tr.Snooze(b.ID, clock.now.Add(time.Hour)))

	snoozes, err := gw.LoadSnoozes()
	require.NoError(t, err)
	assert.NotContains(t, snoozes, a.ID)
	assert.Contains(t, snoozes, b.ID)

	_, ok := tr.SnoozedUntil(a.ID)
	assert.False(t, ok)
}
