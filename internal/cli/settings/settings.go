package settings

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/storage/postgres"
	"github.com/julianstephens/streakly/internal/utils"
)

// SettingsCmd shows the resolved configuration and persists defaults to the
// .env file in the config directory. Flags and real environment variables
// still take precedence over anything saved here.
type SettingsCmd struct {
	List bool `help:"List current settings."`

	Store    *string `help:"Default store DSN. Pass an empty string to unset."`
	Timezone *string `help:"Default IANA timezone. Pass an empty string to unset."`
	Debug    *bool   `help:"Enable or disable debug logging by default."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if c.List {
		cfg := ctx.Config
		source := "flag, environment or default"
		if cfg.FromSecret {
			source = "keyring or " + constants.EnvDBConnection
		}
		fmt.Println("Current Settings:")
		fmt.Printf("  Store:         %s\n", ctx.Store.GetConfigPath())
		fmt.Printf("  Store Kind:    %s\n", cfg.Kind)
		fmt.Printf("  Store Source:  %s\n", source)
		fmt.Printf("  Timezone:      %s\n", cfg.Timezone)
		fmt.Printf("  Debug:         %v\n", cfg.Debug)
		fmt.Printf("  Config Dir:    %s\n", cfg.ConfigDir)
		fmt.Printf("  Settings File: %s\n", config.DotEnvPath(cfg.ConfigDir))
		return nil
	}

	updates := map[string]string{}
	if c.Store != nil {
		if err := validateStore(*c.Store); err != nil {
			return err
		}
		updates[constants.EnvStore] = *c.Store
	}
	if c.Timezone != nil {
		if *c.Timezone != "" && !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		updates[constants.EnvTimezone] = *c.Timezone
	}
	if c.Debug != nil {
		updates[constants.EnvDebug] = strconv.FormatBool(*c.Debug)
	}

	if len(updates) == 0 {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := config.UpdateDotEnv(ctx.Config.ConfigDir, updates); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

// validateStore keeps passwords out of the plain-text settings file.
func validateStore(dsn string) error {
	if config.Classify(dsn) != config.StorePostgres {
		return nil
	}
	if valid, err := postgres.ValidateConnString(dsn); !valid {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("refusing to save a password in settings; use 'streakly keyring set' instead")
		}
		return err
	}
	return nil
}
