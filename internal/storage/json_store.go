package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Store struct {
	Version int                        `json:"version"`
	Slots   map[string]json.RawMessage `json:"slots"`
}

// JSONStore keeps every slot in one JSON document on disk.
type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// An existing file is kept as is
	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.store = &Store{
		Version: 1,
		Slots:   make(map[string]json.RawMessage),
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Slots == nil {
		s.store.Slots = make(map[string]json.RawMessage)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	// Write to a sibling file first so a crash never leaves a truncated document
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) Read(key string) ([]byte, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	raw, ok := s.store.Slots[key]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *JSONStore) Write(key string, data []byte) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if !json.Valid(data) {
		return fmt.Errorf("slot %s: value is not valid JSON", key)
	}

	s.store.Slots[key] = append(json.RawMessage(nil), data...)
	return s.save()
}

func (s *JSONStore) Delete(key string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Slots[key]; !ok {
		return nil
	}
	delete(s.store.Slots, key)
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
