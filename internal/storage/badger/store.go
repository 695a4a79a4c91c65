// Package badger stores slots in an embedded BadgerDB directory.
//
// Selected with a "badger:<dir>" store path. Each slot is one key under
// the "slot/" prefix; writes are synchronous.
package badger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/storage"
)

const (
	slotPrefix = "slot/"
	// gcDiscardRatio is the minimum garbage ratio before Close rewrites the value log.
	gcDiscardRatio = 0.5
)

// Config holds configuration for a BadgerDB instance.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for testing.
	InMemory bool

	// SyncWrites makes every Write durable before it returns.
	SyncWrites bool
}

// DefaultConfig returns a durable on-disk configuration at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// PathFromConfig strips the "badger:" prefix from a store path.
func PathFromConfig(config string) (string, bool) {
	if !strings.HasPrefix(config, constants.BadgerPrefix) {
		return "", false
	}
	return strings.TrimPrefix(config, constants.BadgerPrefix), true
}

// badgerLogger routes BadgerDB's internal messages to the application logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

type Store struct {
	cfg Config
	db  *badger.DB
}

func New(cfg Config) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	if !s.cfg.InMemory && s.cfg.Path == "" {
		return errors.New("badger store path is required")
	}

	var opts badger.Options
	if s.cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(s.cfg.Path, 0700); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", s.cfg.Path, err)
		}
		opts = badger.DefaultOptions(s.cfg.Path)
	}

	opts = opts.
		WithSyncWrites(s.cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open badger database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	return s.open()
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if !s.cfg.InMemory {
		if _, err := os.Stat(s.cfg.Path); os.IsNotExist(err) {
			return storage.ErrNotInitialized
		}
	}
	return s.open()
}

// Close runs one value log GC pass, then closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	if !s.cfg.InMemory {
		if err := s.db.RunValueLogGC(gcDiscardRatio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
			logger.Warn("Badger value log GC failed", "error", err)
		}
	}

	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) Read(key string) ([]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slotPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Write(key string, data []byte) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(slotPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(slotPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	if s.cfg.InMemory {
		return constants.BadgerPrefix + ":memory:"
	}
	return constants.BadgerPrefix + s.cfg.Path
}
