package habits

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/metrics"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/tracker"
	habitview "github.com/julianstephens/streakly/internal/tui/components/habits"
	"github.com/julianstephens/streakly/internal/utils"
)

type HabitCmd struct {
	Add      AddCmd      `cmd:"" help:"Add a new habit."`
	List     ListCmd     `cmd:"" help:"List habits."`
	Log      LogCmd      `cmd:"" help:"Log a completion for today."`
	Archive  ArchiveCmd  `cmd:"" help:"Archive a habit."`
	Restore  RestoreCmd  `cmd:"" help:"Restore an archived habit."`
	Progress ProgressCmd `cmd:"" help:"Show today's progress."`
	Stats    StatsCmd    `cmd:"" help:"Show per-habit statistics."`
	Calendar CalendarCmd `cmd:"" help:"Show a month calendar of completed days."`
	Snooze   SnoozeCmd   `cmd:"" help:"Snooze reminders for a habit."`
	Clear    ClearCmd    `cmd:"" help:"Delete all habits."`
}

type AddCmd struct {
	Name      string  `arg:"" help:"Habit name."`
	Frequency string  `help:"How often the habit is due (daily, weekly)." enum:"daily,weekly" default:"daily"`
	Target    float64 `help:"Goal per period." default:"1"`
	Unit      string  `help:"Unit of the target (times, hours, minutes, km, miles, pages, glasses, servings, calls)." default:"times"`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	habit, err := ctx.Tracker.AddHabit(c.Name, models.Frequency(c.Frequency), c.Target, models.TargetUnit(c.Unit))
	if err := ctx.Check(err); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s, %s %s) [%s]\n",
		habit.Name, habit.Frequency, models.FormatQuantity(habit.TargetValue), habit.TargetUnit, habit.ID)
	return nil
}

type ListCmd struct {
	Archived bool `help:"Show archived habits instead of active ones."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	list := ctx.Tracker.Active()
	if c.Archived {
		list = ctx.Tracker.Archived()
	}
	if len(list) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Tracker.Now()
	for _, h := range list {
		status := ""
		if h.IsArchived {
			status = " [ARCHIVED]"
		}
		fmt.Printf("%s  %s%s\n", shortID(h.ID), metrics.TodayLabel(h, today), status)
	}
	return nil
}

type LogCmd struct {
	Habit  string `arg:"" help:"Habit id, id prefix or name."`
	Amount string `arg:"" optional:"" help:"Amount to log (required for units other than 'times')."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	h, err := cli.FindHabit(ctx.Tracker.Habits(), c.Habit)
	if err != nil {
		return err
	}

	amount := 0.0
	if !h.IsDiscrete() {
		if c.Amount == "" {
			return fmt.Errorf("habit %q is measured in %s; pass an amount", h.Name, h.TargetUnit)
		}
		amount, err = tracker.ParseAmount(c.Amount)
		if err != nil {
			return err
		}
	}

	updated, err := ctx.Tracker.LogCompletion(h.ID, amount)
	if err := ctx.Check(err); err != nil {
		return err
	}

	p := metrics.HabitProgress(updated, ctx.Tracker.Now())
	fmt.Printf("Logged %s: %s\n", updated.Name, p.Label)
	return nil
}

type ArchiveCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix or name."`
}

func (c *ArchiveCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	h, err := cli.FindHabit(ctx.Tracker.Active(), c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Check(ctx.Tracker.Archive(h.ID)); err != nil {
		return err
	}

	fmt.Printf("Archived habit: %s\n", h.Name)
	return nil
}

type RestoreCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix or name."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	h, err := cli.FindHabit(ctx.Tracker.Archived(), c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Check(ctx.Tracker.Restore(h.ID)); err != nil {
		return err
	}

	fmt.Printf("Restored habit: %s\n", h.Name)
	return nil
}

type ProgressCmd struct {
	Habit string `arg:"" optional:"" help:"Only show this habit."`
}

func (c *ProgressCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	list := ctx.Tracker.Active()
	if c.Habit != "" {
		h, err := cli.FindHabit(ctx.Tracker.Habits(), c.Habit)
		if err != nil {
			return err
		}
		list = []models.Habit{h}
	}
	if len(list) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Tracker.Now()
	fmt.Printf("Progress for %s:\n\n", utils.DayKey(today))
	for _, h := range list {
		p := metrics.HabitProgress(h, today)
		fmt.Printf("%-24s %s %5.1f%%  %s\n", truncate(h.Name, 24), habitview.ProgressBar(p.Percent, 30), p.Percent, p.Label)
	}
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	series := ctx.Tracker.Series()
	if len(series) == 0 {
		fmt.Println("No habits found.")
		return nil
	}
	fmt.Println(habitview.StatsTable(series))
	return nil
}

type CalendarCmd struct {
	Month string `help:"Month to show (YYYY-MM, default: current month)."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	today := ctx.Tracker.Now()
	year, month, err := parseMonth(c.Month, today)
	if err != nil {
		return err
	}

	fmt.Print(habitview.Calendar(ctx.Tracker.Calendar(year, month), utils.DayKey(today)))
	return nil
}

func parseMonth(s string, today time.Time) (int, time.Month, error) {
	if s == "" {
		return today.Year(), today.Month(), nil
	}
	t, err := time.Parse(constants.MonthFormat, s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month format: %s (expected YYYY-MM)", s)
	}
	return t.Year(), t.Month(), nil
}

type SnoozeCmd struct {
	Habit string        `arg:"" help:"Habit id, id prefix or name."`
	For   time.Duration `help:"How long to snooze reminders." default:"1h"`
}

func (c *SnoozeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	if c.For <= 0 {
		return errors.New("snooze duration must be positive")
	}

	h, err := cli.FindHabit(ctx.Tracker.Active(), c.Habit)
	if err != nil {
		return err
	}

	until := ctx.Tracker.Now().Add(c.For)
	if err := ctx.Check(ctx.Tracker.Snooze(h.ID, until)); err != nil {
		return err
	}

	fmt.Printf("Snoozed reminders for %s until %s\n", h.Name, until.Format("2006-01-02 15:04"))
	return nil
}

type ClearCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete all %d habits and their history?", len(ctx.Tracker.Habits()))).
			Description("This cannot be undone.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Check(ctx.Tracker.ClearAll()); err != nil {
		return err
	}
	fmt.Println("All habits deleted.")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
