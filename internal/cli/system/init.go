package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/migration"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/storage/badger"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing store before initialization."`
	Source string `help:"Store path or connection string to copy habits from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized streakly storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying habits from: %s\n", c.Source)
		n, err := c.copyFrom(ctx, c.Source)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Printf("Copied %d habits.\n", n)
	}
	return nil
}

// reset removes a file-backed store. Database servers are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	kind := config.Classify(ctx.Config.Store)
	if kind == config.StorePostgres {
		return errors.New("--force is not supported for PostgreSQL stores")
	}

	path := ctx.Config.Store
	if kind == config.StoreBadger {
		path, _ = badger.PathFromConfig(path)
	}

	if c.Source != "" {
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == path {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing store: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing store: %w", err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete existing store: %w", err)
	}
	fmt.Printf("Deleted existing store at: %s\n", path)
	return nil
}

// copyFrom reads the habit slot of source, normalizes it and saves it into
// the destination store.
func (c *InitCmd) copyFrom(ctx *cli.Context, source string) (int, error) {
	source, err := config.ExpandHome(source)
	if err != nil {
		return 0, err
	}
	src, err := cli.OpenDSN(source, false)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	now := ctx.Tracker.Now()
	habits, res, err := storage.NewGateway(src).Load(now)
	if err != nil {
		return 0, err
	}
	fmt.Printf("  Read %d records (%s)\n", len(habits), describeResult(res))
	if err := ctx.Gateway.Save(habits); err != nil {
		return 0, err
	}

	snoozes, err := storage.NewGateway(src).LoadSnoozes()
	if err == nil && len(snoozes) > 0 {
		if err := ctx.Gateway.SaveSnoozes(snoozes); err != nil {
			return 0, err
		}
	}
	return len(habits), nil
}

// describeResult is shared by init and migrate output.
func describeResult(res migration.Result) string {
	return fmt.Sprintf("%d canonical, %d count-map, %d date-list",
		res.Shapes[migration.ShapeCanonical], res.Shapes[migration.ShapeCountMap], res.Shapes[migration.ShapeDateList])
}
