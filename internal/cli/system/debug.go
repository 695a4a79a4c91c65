package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/metrics"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show the store location."`
	DumpHabit *DebugDumpHabitCmd `cmd:"" help:"Dump a habit and its metrics as JSON."`
	DumpSlot  *DebugDumpSlotCmd  `cmd:"" help:"Dump a raw storage slot."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
		"kind": string(ctx.Config.Kind),
	})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix or name."`
}

type habitDump struct {
	Habit           models.Habit     `json:"habit"`
	Progress        metrics.Progress `json:"progress"`
	MaxDailyCount   int              `json:"maxDailyCount"`
	LongestStreak   int              `json:"longestStreak"`
	ConsistencyRate float64          `json:"consistencyRate"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	h, err := cli.FindHabit(ctx.Tracker.Habits(), cmd.Habit)
	if err != nil {
		return err
	}

	today := ctx.Tracker.Now()
	return printJSON(habitDump{
		Habit:           h,
		Progress:        metrics.HabitProgress(h, today),
		MaxDailyCount:   metrics.MaxDailyCount(h.Completions),
		LongestStreak:   metrics.LongestConsecutiveStreak(h.Completions),
		ConsistencyRate: metrics.ConsistencyRate(h.Completions, h.CreationDate, today),
	})
}

type DebugDumpSlotCmd struct {
	Slot string `arg:"" optional:"" help:"Slot name." default:"habits"`
}

func (cmd *DebugDumpSlotCmd) Run(ctx *cli.Context) error {
	if err := cli.Prepare(ctx.Store); err != nil {
		return err
	}

	data, err := ctx.Store.Read(cmd.Slot)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return fmt.Errorf("slot %q is empty (known slots: %s)", cmd.Slot, strings.Join(constants.Slots, ", "))
	}
	if err != nil {
		return fmt.Errorf("failed to read slot %s: %w", cmd.Slot, err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		fmt.Println(string(data))
		return nil
	}
	return printJSON(v)
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
