package tracker

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
)

// fakeClock is a settable Clock.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("habit-%d", n)
	}
}

func setupTracker(t *testing.T) (*Tracker, *storage.Gateway, *fakeClock) {
	t.Helper()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "streakly.json"))
	require.NoError(t, store.Init())
	gw := storage.NewGateway(store)

	clock := &fakeClock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	tr := New(gw, WithClock(clock.Now), WithLocation(time.UTC), WithIDGenerator(sequentialIDs()))
	_, err := tr.Load()
	require.NoError(t, err)
	return tr, gw, clock
}

func TestAddHabit(t *testing.T) {
	tr, gw, clock := setupTracker(t)

	h, err := tr.AddHabit("  Read  ", models.FrequencyDaily, 3, "")
	require.NoError(t, err)

	assert.Equal(t, "habit-1", h.ID)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, models.UnitTimes, h.TargetUnit)
	assert.Equal(t, clock.now, h.CreationDate)
	assert.NotNil(t, h.Completions)
	assert.Empty(t, h.Completions)
	assert.False(t, h.IsArchived)

	// Written through
	saved, _, err := gw.Load(clock.now)
	require.NoError(t, err)
	assert.Equal(t, []models.Habit{h}, saved)
}

func TestAddHabitValidation(t *testing.T) {
	tr, _, _ := setupTracker(t)

	tests := []struct {
		name      string
		habitName string
		frequency models.Frequency
		target    float64
		unit      models.TargetUnit
	}{
		{"empty name", "", models.FrequencyDaily, 1, models.UnitTimes},
		{"blank name", "   ", models.FrequencyDaily, 1, models.UnitTimes},
		{"zero target", "x", models.FrequencyDaily, 0, models.UnitTimes},
		{"negative target", "x", models.FrequencyDaily, -1, models.UnitTimes},
		{"unknown frequency", "x", "monthly", 1, models.UnitTimes},
		{"unknown unit", "x", models.FrequencyDaily, 1, "parsecs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.AddHabit(tt.habitName, tt.frequency, tt.target, tt.unit)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, tr.Habits())
}

func TestLogCompletionDiscreteKeepsCountAndValueEqual(t *testing.T) {
	tr, _, clock := setupTracker(t)
	h, err := tr.AddHabit("Water", models.FrequencyDaily, 8, models.UnitTimes)
	require.NoError(t, err)

	amounts := []float64{0, 5, -3, 1, 2.5}
	for _, amount := range amounts {
		_, err := tr.LogCompletion(h.ID, amount)
		require.NoError(t, err)
	}
	clock.now = clock.now.Add(24 * time.Hour)
	_, err = tr.LogCompletion(h.ID, 0)
	require.NoError(t, err)

	got, err := tr.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionEntry{Count: 5, TotalValue: 5}, got.Completions["2024-01-10"])
	assert.Equal(t, models.CompletionEntry{Count: 1, TotalValue: 1}, got.Completions["2024-01-11"])
	for day, entry := range got.Completions {
		assert.Equal(t, float64(entry.Count), entry.TotalValue, day)
	}
}

func TestLogCompletionContinuous(t *testing.T) {
	tr, _, _ := setupTracker(t)
	h, err := tr.AddHabit("Run", models.FrequencyWeekly, 20, "km")
	require.NoError(t, err)

	_, err = tr.LogCompletion(h.ID, 5.5)
	require.NoError(t, err)
	got, err := tr.LogCompletion(h.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionEntry{Count: 2, TotalValue: 7.5}, got.Completions["2024-01-10"])

	for _, bad := range []float64{-5, 0} {
		_, err := tr.LogCompletion(h.ID, bad)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	}

	got, err = tr.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Completions["2024-01-10"].Count, "rejected logs must not change state")
}

func TestLogCompletionRejectsOverflowingTotal(t *testing.T) {
	tr, gw, _ := setupTracker(t)
	h, err := tr.AddHabit("Read", models.FrequencyDaily, 10, models.UnitPages)
	require.NoError(t, err)

	_, err = tr.LogCompletion(h.ID, 1e308)
	require.NoError(t, err)
	_, err = tr.LogCompletion(h.ID, 1e308)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.False(t, apperrors.IsPersistence(err))

	got, err := tr.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionEntry{Count: 1, TotalValue: 1e308}, got.Completions["2024-01-10"])

	// later mutations still reach the store
	require.NoError(t, tr.Archive(h.ID))
	stored, _, err := gw.Load(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsArchived)
}

func TestLogCompletionUsesTrackerLocation(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "streakly.json"))
	require.NoError(t, store.Init())

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on the 10th is the 11th in Tokyo
	clock := &fakeClock{now: time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)}
	tr := New(storage.NewGateway(store), WithClock(clock.Now), WithLocation(tokyo))

	h, err := tr.AddHabit("Read", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)
	got, err := tr.LogCompletion(h.ID, 0)
	require.NoError(t, err)
	assert.Contains(t, got.Completions, "2024-01-11")
}

func TestUnknownIDIsNotFound(t *testing.T) {
	tr, _, _ := setupTracker(t)

	_, err := tr.LogCompletion("missing", 1)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(tr.Archive("missing")))
	assert.True(t, apperrors.IsNotFound(tr.Restore("missing")))
	_, err = tr.Get("missing")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = tr.Progress("missing")
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(tr.Snooze("missing", time.Now())))
}

func TestArchiveExclusion(t *testing.T) {
	tr, gw, clock := setupTracker(t)
	read, err := tr.AddHabit("Read", models.FrequencyDaily, 2, models.UnitTimes)
	require.NoError(t, err)
	_, err = tr.AddHabit("Walk", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)
	_, err = tr.LogCompletion(read.ID, 0)
	require.NoError(t, err)

	require.NoError(t, tr.Archive(read.ID))

	assert.Len(t, tr.Active(), 1)
	assert.Equal(t, "Walk", tr.Active()[0].Name)
	require.Len(t, tr.Archived(), 1)
	assert.Equal(t, read.ID, tr.Archived()[0].ID)

	for _, r := range tr.DueReminders(clock.now) {
		assert.NotEqual(t, read.ID, r.ID)
	}

	saved, _, err := gw.Load(clock.now)
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	series := tr.Series()
	require.Len(t, series, 2)
	assert.Equal(t, "Read", series[0].Name)
	assert.Equal(t, 1, series[0].MaxDailyCount)

	require.NoError(t, tr.Restore(read.ID))
	assert.Len(t, tr.Active(), 2)
	assert.Empty(t, tr.Archived())
}

func TestClearAll(t *testing.T) {
	tr, gw, clock := setupTracker(t)
	h, err := tr.AddHabit("Read", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)
	require.NoError(t, tr.Snooze(h.ID, clock.now.Add(time.Hour)))

	require.NoError(t, tr.ClearAll())
	assert.Empty(t, tr.Habits())

	raw, err := gw.LoadRaw()
	require.NoError(t, err)
	assert.Nil(t, raw)

	snoozes, err := gw.LoadSnoozes()
	require.NoError(t, err)
	assert.Empty(t, snoozes)
}

func TestReloadRoundTrip(t *testing.T) {
	tr, gw, clock := setupTracker(t)
	h, err := tr.AddHabit("Pages", models.FrequencyDaily, 30, models.UnitPages)
	require.NoError(t, err)
	_, err = tr.LogCompletion(h.ID, 12)
	require.NoError(t, err)

	again := New(gw, WithClock(clock.Now), WithLocation(time.UTC))
	res, err := again.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Upgraded())
	assert.Equal(t, tr.Habits(), again.Habits())
}

func TestProgress(t *testing.T) {
	tr, _, _ := setupTracker(t)
	h, err := tr.AddHabit("Read", models.FrequencyDaily, 4, models.UnitTimes)
	require.NoError(t, err)
	_, err = tr.LogCompletion(h.ID, 0)
	require.NoError(t, err)

	p, err := tr.Progress(h.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, p.Percent)
	assert.Equal(t, "1/4 completions", p.Label)
}

func TestCalendar(t *testing.T) {
	tr, _, _ := setupTracker(t)
	h, err := tr.AddHabit("Read", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)
	_, err = tr.LogCompletion(h.ID, 0)
	require.NoError(t, err)

	m := tr.Calendar(2024, time.January)
	assert.True(t, m.Days[9].Done)
	assert.False(t, m.Days[8].Done)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 2.5 ")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	for _, bad := range []string{"", "abc", "-5", "0", "NaN", "Inf"} {
		_, err := ParseAmount(bad)
		assert.True(t, apperrors.IsValidation(err), "input %q", bad)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	tr, _, _ := setupTracker(t)
	h, err := tr.AddHabit("Read", models.FrequencyDaily, 1, models.UnitTimes)
	require.NoError(t, err)

	snapshot := tr.Habits()
	snapshot[0].Name = "changed"
	snapshot[0].Completions["2024-01-01"] = models.CompletionEntry{Count: 9, TotalValue: 9}

	got, err := tr.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read", got.Name)
	assert.Empty(t, got.Completions)
}

// failingProvider accepts reads but fails every write.
type failingProvider struct {
	data map[string][]byte
}

var errDiskFull = errors.New("disk full")

func (p *failingProvider) Init() error  { return nil }
func (p *failingProvider) Load() error  { return nil }
func (p *failingProvider) Close() error { return nil }
func (p *failingProvider) Read(key string) ([]byte, error) {
	if d, ok := p.data[key]; ok {
		return d, nil
	}
	return nil, storage.ErrSlotNotFound
}
func (p *failingProvider) Write(string, []byte) error { return errDiskFull }
func (p *failingProvider) Delete(string) error        { return errDiskFull }
func (p *failingProvider) GetConfigPath() string      { return "failing" }

func TestSaveFailureKeepsMutationInMemory(t *testing.T) {
	tr := New(storage.NewGateway(&failingProvider{}), WithLocation(time.UTC))
	_, err := tr.Load()
	require.NoError(t, err)

	h, err := tr.AddHabit("Read", models.FrequencyDaily, 1, models.UnitTimes)
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, "Read", h.Name)
	assert.Len(t, tr.Habits(), 1)

	_, err = tr.LogCompletion(h.ID, 0)
	assert.True(t, apperrors.IsPersistence(err))
	got, getErr := tr.Get(h.ID)
	require.NoError(t, getErr)
	assert.Len(t, got.Completions, 1)

	assert.True(t, apperrors.IsPersistence(tr.ClearAll()))
	assert.Empty(t, tr.Habits())
}

func TestLoadFailureFallsBackToEmpty(t *testing.T) {
	p := &failingProvider{data: map[string][]byte{"habits": []byte(`"not an array"`)}}
	tr := New(storage.NewGateway(p))

	_, err := tr.Load()
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	assert.NotNil(t, tr.Habits())
	assert.Empty(t, tr.Habits())
}

func TestLoadUpgradesLegacyData(t *testing.T) {
	p := &failingProvider{data: map[string][]byte{
		"habits": []byte(`[{"id":1,"name":"Walk","completions":{"2024-01-10":2},"targetCount":3}]`),
	}}
	clock := &fakeClock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	tr := New(storage.NewGateway(p), WithClock(clock.Now), WithLocation(time.UTC))

	res, err := tr.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upgraded())

	p2, err := tr.Progress("1")
	require.NoError(t, err)
	assert.Equal(t, "2/3 completions", p2.Label)
}
