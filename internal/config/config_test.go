package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/keyring"
)

// isolate points HOME at a temp dir, clears STREAKLY_* and stubs the keyring.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{constants.EnvStore, constants.EnvTimezone, constants.EnvDebug, constants.EnvDBConnection} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	old := keyringLookup
	keyringLookup = func() (string, error) { return "", keyring.ErrNotFound }
	t.Cleanup(func() { keyringLookup = old })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(Flags{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "streakly", "streakly.db"), cfg.Store)
	assert.Equal(t, StoreSQLite, cfg.Kind)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, filepath.Join(home, ".config", "streakly"), cfg.ConfigDir)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.FromSecret)
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv(constants.EnvStore, "/tmp/env.json")
	t.Setenv(constants.EnvTimezone, "Europe/Berlin")
	t.Setenv(constants.EnvDebug, "true")

	cfg, err := Load(Flags{})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.json", cfg.Store)
	assert.Equal(t, StoreJSON, cfg.Kind)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.True(t, cfg.Debug)

	cfg, err = Load(Flags{Config: "badger:/tmp/flag", Timezone: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, "badger:/tmp/flag", cfg.Store)
	assert.Equal(t, StoreBadger, cfg.Kind)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadDotEnv(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "streakly")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STREAKLY_TIMEZONE=Asia/Tokyo\n"), 0600))

	cfg, err := Load(Flags{})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
}

func TestLoadInvalidValues(t *testing.T) {
	isolate(t)

	_, err := Load(Flags{Timezone: "Mars/Olympus"})
	assert.Error(t, err)

	t.Setenv(constants.EnvDebug, "sometimes")
	_, err = Load(Flags{})
	assert.Error(t, err)
}

func TestLoadConnectionSecret(t *testing.T) {
	isolate(t)
	keyringLookup = func() (string, error) { return "postgres://u:p@db/streakly", nil }

	cfg, err := Load(Flags{})
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Kind)
	assert.True(t, cfg.FromSecret)

	t.Setenv(constants.EnvDBConnection, "postgresql://env@db/streakly")
	cfg, err = Load(Flags{})
	require.NoError(t, err)
	assert.Equal(t, "postgresql://env@db/streakly", cfg.Store)

	// An explicit store wins over any secret
	cfg, err = Load(Flags{Config: "/tmp/habits.db"})
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Kind)
	assert.False(t, cfg.FromSecret)
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)

	tests := map[string]string{
		"~/.config/streakly/streakly.db": filepath.Join(home, ".config/streakly/streakly.db"),
		"~":                              home,
		"badger:~/data":                  "badger:" + filepath.Join(home, "data"),
		"/abs/path.db":                   "/abs/path.db",
		"~other/file":                    "~other/file",
		"postgres://user@host/db":        "postgres://user@host/db",
	}
	for in, want := range tests {
		got, err := ExpandHome(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		dsn  string
		want StoreKind
	}{
		{"postgres://user@host/db", StorePostgres},
		{"postgresql://user@host/db", StorePostgres},
		{"host=localhost dbname=streakly", StorePostgres},
		{"badger:/var/lib/streakly", StoreBadger},
		{"/home/me/habits.json", StoreJSON},
		{"/home/me/habits.JSON", StoreJSON},
		{"/home/me/streakly.db", StoreSQLite},
		{"habits", StoreSQLite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.dsn), tt.dsn)
	}
}

func TestUpdateDotEnv(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "streakly")

	require.NoError(t, UpdateDotEnv(dir, map[string]string{
		constants.EnvStore:    "~/habits.json",
		constants.EnvTimezone: "UTC",
	}))
	require.NoError(t, UpdateDotEnv(dir, map[string]string{constants.EnvTimezone: ""}))

	info, err := os.Stat(DotEnvPath(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := Load(Flags{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "habits.json"), cfg.Store)
	assert.Equal(t, StoreJSON, cfg.Kind)
	assert.Equal(t, constants.DefaultTimezone, cfg.Timezone)
}
