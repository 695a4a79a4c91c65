package system

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/tracker"
)

var testNow = time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC)

const legacyHabits = `[
	{"id": 1700000000000, "name": "Run", "frequency": "daily",
	 "creationDate": "2024-01-01T08:00:00.000Z", "completedDates": ["2024-01-01", "2024-01-02"]},
	{"id": 1700000000001, "name": "Water", "frequency": "weekly",
	 "creationDate": "2024-01-03T08:00:00.000Z", "completions": {"2024-01-03": 3}, "targetCount": 5}
]`

func newTestContext(t *testing.T, store storage.Provider, path string) *cli.Context {
	t.Helper()
	ctx := cli.NewContext(
		config.Config{Store: path, Kind: config.Classify(path), Location: time.UTC},
		store,
		tracker.WithClock(func() time.Time { return testNow }),
	)
	ctx.Stderr = io.Discard
	return ctx
}

// jsonContext returns a context over a not yet initialized JSON store.
func jsonContext(t *testing.T) (*cli.Context, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habits.json")
	return newTestContext(t, storage.NewJSONStore(path), path), path
}

// writeSlot seeds path's habits slot with raw data.
func writeSlot(t *testing.T, path, data string) {
	t.Helper()
	store := storage.NewJSONStore(path)
	require.NoError(t, store.Init())
	require.NoError(t, store.Write(constants.HabitsSlot, []byte(data)))
}
