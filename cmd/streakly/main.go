package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/cli/backups"
	"github.com/julianstephens/streakly/internal/cli/habits"
	"github.com/julianstephens/streakly/internal/cli/settings"
	"github.com/julianstephens/streakly/internal/cli/system"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite path, JSON file, badger:<dir> or PostgreSQL connection string. PostgreSQL credentials belong in the OS keyring or STREAKLY_DB_CONNECTION, not here." type:"string"`
	Timezone string `help:"IANA timezone that decides which calendar day is today." type:"string"`
	DebugLog bool   `name:"debug" help:"Enable debug logging."`

	Init     system.InitCmd       `cmd:"" help:"Initialize streakly storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run schema migrations and rewrite legacy habit records."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd   `cmd:"" help:"Report duplicate names and inconsistent completion records."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and log completions."`
	Remind   system.RemindCmd     `cmd:"" help:"Send reminders for daily habits still below target."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage habit backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Show or save default settings."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Debug    system.DebugCmd      `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with daily and weekly targets, streaks and reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(config.Flags{
		Config:   CLI.Config,
		Timezone: CLI.Timezone,
		Debug:    CLI.DebugLog,
	})
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", apperrors.Warning(err))
	}

	store, err := cli.OpenProvider(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	appCtx := cli.NewContext(cfg, store)
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}
