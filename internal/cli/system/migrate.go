package system

import (
	"fmt"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/storage"
)

// MigrateCmd brings the store schema up to date and rewrites every habit
// record in canonical shape.
type MigrateCmd struct {
	DryRun bool `help:"Report what would change without writing."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := cli.Prepare(ctx.Store); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	if m, ok := ctx.Store.(storage.SchemaMigrator); ok && !c.DryRun {
		count, err := m.Migrate(func(msg string) {
			fmt.Println(msg)
		})
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if count == 0 {
			fmt.Println("No schema migrations to apply. Database is up to date.")
		} else {
			fmt.Printf("Applied %d schema migration(s).\n", count)
		}
	}

	raw, err := ctx.Gateway.LoadRaw()
	if err != nil {
		return err
	}
	if raw == nil {
		fmt.Println("No habits stored yet.")
		return nil
	}

	habits, res, err := ctx.Gateway.Load(ctx.Tracker.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Found %d habit records (%s).\n", len(habits), describeResult(res))
	if len(res.Skipped) > 0 {
		fmt.Printf("Skipping %d elements that are not habit records.\n", len(res.Skipped))
	}
	if res.Dropped > 0 {
		fmt.Printf("Dropping %d unusable completion days.\n", res.Dropped)
	}

	if c.DryRun {
		fmt.Println("Dry run: nothing written.")
		return nil
	}
	if err := ctx.Gateway.Save(habits); err != nil {
		return err
	}
	fmt.Println("Habit records rewritten in canonical shape.")
	return nil
}
