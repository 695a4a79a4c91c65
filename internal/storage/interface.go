package storage

import "errors"

var (
	// ErrSlotNotFound is returned by Read when the slot has never been written
	// or was deleted. It means "no prior data", not a failure.
	ErrSlotNotFound = errors.New("storage slot not found")

	// ErrNotInitialized is returned by Load when the backing store does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized, run 'streakly init' first")
)

// Provider is a durable key-value store of named JSON slots.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Slots
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error

	// Utils
	GetConfigPath() string
}

// SchemaMigrator is implemented by providers backed by a versioned SQL schema.
type SchemaMigrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersions() (current int, latest int, err error)
}
