// Package config resolves runtime settings from flags, the environment and
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/keyring"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/utils"
)

// StoreKind names the backend a DSN selects.
type StoreKind string

const (
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
	StoreBadger   StoreKind = "badger"
	StoreJSON     StoreKind = "json"
)

// Flags are the global command-line options. Empty values mean "not given".
type Flags struct {
	Config   string
	Timezone string
	Debug    bool
}

type Config struct {
	// Store is the expanded DSN of the habit store.
	Store     string
	Kind      StoreKind
	Timezone  string
	Location  *time.Location
	Debug     bool
	ConfigDir string
	// FromSecret is set when Store came from the keyring or STREAKLY_DB_CONNECTION
	// and may therefore carry a password.
	FromSecret bool
}

// keyringLookup is swapped in tests.
var keyringLookup = keyring.GetConnectionString

// Load applies, lowest precedence first: defaults, .env files, STREAKLY_*
// variables, then flags.
func Load(flags Flags) (Config, error) {
	cfg := Config{
		Store:    constants.DefaultConfigPath,
		Timezone: constants.DefaultTimezone,
	}

	configDir, err := DefaultConfigDir()
	if err != nil {
		return Config{}, err
	}
	cfg.ConfigDir = configDir
	loadDotEnv(DotEnvPath(configDir), ".env")

	storeSet := false
	if v := os.Getenv(constants.EnvStore); v != "" {
		cfg.Store = v
		storeSet = true
	}
	if v := os.Getenv(constants.EnvTimezone); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		cfg.Debug = b
	}

	if flags.Config != "" {
		cfg.Store = flags.Config
		storeSet = true
	}
	if flags.Timezone != "" {
		cfg.Timezone = flags.Timezone
	}
	if flags.Debug {
		cfg.Debug = true
	}

	if !storeSet {
		if secret := connectionSecret(); secret != "" {
			cfg.Store = secret
			cfg.FromSecret = true
		}
	}

	cfg.Store, err = ExpandHome(cfg.Store)
	if err != nil {
		return Config{}, err
	}
	cfg.Kind = Classify(cfg.Store)

	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// connectionSecret looks for a PostgreSQL connection string in the
// environment first and then in the OS keyring.
func connectionSecret() string {
	if v := os.Getenv(constants.EnvDBConnection); v != "" {
		return v
	}
	connStr, err := keyringLookup()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Keyring lookup failed", "error", err)
		}
		return ""
	}
	return connStr
}

// loadDotEnv loads every file that exists. godotenv never overrides variables
// that are already set, so the real environment wins and earlier files win
// over later ones.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.Warn("Ignoring unreadable .env file", "path", p, "error", err)
		}
	}
}

// DefaultConfigDir is ~/.config/streakly.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", constants.AppName), nil
}

// ExpandHome replaces a leading "~" with the user's home directory. A
// badger: prefix is kept in front of the expanded path.
func ExpandHome(dsn string) (string, error) {
	prefix := ""
	path := dsn
	if strings.HasPrefix(dsn, constants.BadgerPrefix) {
		prefix = constants.BadgerPrefix
		path = strings.TrimPrefix(dsn, constants.BadgerPrefix)
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return dsn, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return prefix + filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Classify picks the backend for a DSN.
func Classify(dsn string) StoreKind {
	switch {
	case strings.HasPrefix(dsn, constants.PostgresScheme),
		strings.HasPrefix(dsn, constants.PostgresqlScheme),
		strings.Contains(dsn, "host="):
		return StorePostgres
	case strings.HasPrefix(dsn, constants.BadgerPrefix):
		return StoreBadger
	case strings.EqualFold(filepath.Ext(dsn), ".json"):
		return StoreJSON
	default:
		return StoreSQLite
	}
}

// DotEnvPath is the .env file read from the config directory.
func DotEnvPath(configDir string) string {
	return filepath.Join(configDir, ".env")
}

// UpdateDotEnv merges updates into configDir/.env. An empty value removes the key.
func UpdateDotEnv(configDir string, updates map[string]string) error {
	path := DotEnvPath(configDir)
	env := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		env, err = godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	for k, v := range updates {
		if v == "" {
			delete(env, k)
			continue
		}
		env[k] = v
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}
