// Package storagetest holds the behaviour every slot Provider must share,
// run by each backend's tests against a real instance.
package storagetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
)

var loadTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// SampleHabits returns canonical records covering both frequencies and unit kinds.
func SampleHabits() []models.Habit {
	return []models.Habit{
		{
			ID:           "habit-1",
			Name:         "Read",
			Frequency:    models.FrequencyDaily,
			CreationDate: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			TargetValue:  3,
			TargetUnit:   models.UnitTimes,
			Completions: models.Completions{
				"2024-01-01": {Count: 2, TotalValue: 2},
				"2024-01-02": {Count: 3, TotalValue: 3},
			},
		},
		{
			ID:           "habit-2",
			Name:         "Run",
			Frequency:    models.FrequencyWeekly,
			CreationDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			TargetValue:  5.5,
			TargetUnit:   "km",
			Completions: models.Completions{
				"2024-01-03": {Count: 1, TotalValue: 6.2},
			},
			IsArchived: true,
		},
	}
}

// RunGatewayContract exercises a Gateway over p. p must be initialized and empty.
func RunGatewayContract(t *testing.T, p storage.Provider) {
	t.Helper()
	gw := storage.NewGateway(p)

	t.Run("absent slot loads empty", func(t *testing.T) {
		raw, err := gw.LoadRaw()
		require.NoError(t, err)
		assert.Nil(t, raw)

		habits, _, err := gw.Load(loadTime)
		require.NoError(t, err)
		assert.NotNil(t, habits)
		assert.Empty(t, habits)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		want := SampleHabits()
		require.NoError(t, gw.Save(want))

		got, res, err := gw.Load(loadTime)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Upgraded())
		assert.Equal(t, want, got)
	})

	t.Run("legacy slot is upgraded on load", func(t *testing.T) {
		legacy := `[{"id":1,"name":"Walk","frequency":"daily","creationDate":"2024-01-01T00:00:00.000Z","completedDates":["2024-01-01"]}]`
		require.NoError(t, p.Write(constants.HabitsSlot, []byte(legacy)))

		got, res, err := gw.Load(loadTime)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Upgraded())
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, models.CompletionEntry{Count: 1, TotalValue: 1}, got[0].Completions["2024-01-01"])
	})

	t.Run("snoozes round-trip", func(t *testing.T) {
		until := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
		require.NoError(t, gw.SaveSnoozes(map[string]time.Time{"habit-1": until}))

		snoozes, err := gw.LoadSnoozes()
		require.NoError(t, err)
		require.Contains(t, snoozes, "habit-1")
		assert.True(t, until.Equal(snoozes["habit-1"]))
	})

	t.Run("clear removes everything", func(t *testing.T) {
		require.NoError(t, gw.Save(SampleHabits()))
		require.NoError(t, gw.Clear())

		habits, _, err := gw.Load(loadTime)
		require.NoError(t, err)
		assert.Empty(t, habits)

		snoozes, err := gw.LoadSnoozes()
		require.NoError(t, err)
		assert.Empty(t, snoozes)

		// Clearing twice is harmless
		assert.NoError(t, gw.Clear())
	})
}
