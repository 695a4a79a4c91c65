package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakly/internal/models"
)

func TestRemindDryRun(t *testing.T) {
	ctx, _ := jsonContext(t)
	assert.NoError(t, (&RemindCmd{DryRun: true}).Run(ctx))

	_, err := ctx.Tracker.AddHabit("Water", models.FrequencyDaily, 8, models.UnitTimes)
	require.NoError(t, err)
	assert.NoError(t, (&RemindCmd{DryRun: true}).Run(ctx))
}

func TestRemindWithoutTray(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	ctx, _ := jsonContext(t)
	require.NoError(t, ctx.Open())
	_, err := ctx.Tracker.AddHabit("Water", models.FrequencyDaily, 8, models.UnitTimes)
	require.NoError(t, err)

	// No tray app is running, so delivery is skipped quietly
	assert.NoError(t, (&RemindCmd{}).Run(ctx))
}
