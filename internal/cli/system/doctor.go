package system

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/keyring"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/utils"
	"github.com/julianstephens/streakly/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsStore checks are skipped when the store cannot be opened.
	needsStore bool
	// warnOnly failures do not fail the command.
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Store reachable", run: checkStoreReachable},
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Habit records", needsStore: true, run: checkHabitRecords},
	{name: "Completion integrity", needsStore: true, run: checkCompletionIntegrity},
	{name: "Habit conflicts", needsStore: true, warnOnly: true, run: checkHabitConflicts},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
	{name: "Tray app", warnOnly: true, run: checkTray},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeOK := true
	for _, c := range checks {
		if c.needsStore && !storeOK {
			fmt.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Store reachable" {
				storeOK = false
			}
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load %s: %w", ctx.Store.GetConfigPath(), err)
	}
	_, err := ctx.Gateway.LoadRaw()
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.SchemaMigrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaVersions()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("store schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'streakly migrate')", current, latest)
	}
	return nil
}

func checkHabitRecords(ctx *cli.Context) error {
	_, res, err := ctx.Gateway.Load(time.Now())
	if err != nil {
		return err
	}

	var problems []string
	if n := res.Upgraded(); n > 0 {
		problems = append(problems, fmt.Sprintf("%d legacy records (run 'streakly migrate')", n))
	}
	if len(res.Skipped) > 0 {
		problems = append(problems, fmt.Sprintf("%d elements are not habit records", len(res.Skipped)))
	}
	if res.Dropped > 0 {
		problems = append(problems, fmt.Sprintf("%d completion days are unusable", res.Dropped))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d issue(s): %v", len(problems), problems)
	}
	return nil
}

func checkCompletionIntegrity(ctx *cli.Context) error {
	return reportConflicts(ctx, func(c validation.Conflict) bool { return !isSoftConflict(c) })
}

func checkHabitConflicts(ctx *cli.Context) error {
	return reportConflicts(ctx, isSoftConflict)
}

// Soft conflicts do not corrupt statistics on their own.
func isSoftConflict(c validation.Conflict) bool {
	return c.Type == validation.ConflictDuplicateName || c.Type == validation.ConflictFutureCompletion
}

func reportConflicts(ctx *cli.Context, keep func(validation.Conflict) bool) error {
	habits, _, err := ctx.Gateway.Load(time.Now())
	if err != nil {
		return err
	}

	result := validation.New().ValidateHabits(habits, ctx.Tracker.Now())
	var kept []string
	for _, c := range result.Conflicts {
		if keep(c) {
			kept = append(kept, c.Description)
		}
	}
	if len(kept) > 0 {
		return fmt.Errorf("%d issue(s): %s", len(kept), strings.Join(kept, "; "))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if ctx.Config.Location == nil {
		return fmt.Errorf("timezone %q is not loaded", ctx.Config.Timezone)
	}
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q", ctx.Config.Timezone)
	}
	now := ctx.Tracker.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if ctx.Config.Kind != config.StorePostgres {
		return nil
	}
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkTray(ctx *cli.Context) error {
	dir, err := notifier.GetTrayAppConfigDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("tray app not installed (no %s), reminders are printed only with --dry-run", dir)
	}
	return nil
}
