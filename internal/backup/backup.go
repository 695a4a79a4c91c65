// Package backup snapshots every storage slot into timestamped JSON files.
// Snapshots are independent of the store kind, so a backup taken from SQLite
// can be restored into PostgreSQL or Badger.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/storage"
)

const snapshotVersion = 1

// Info describes one snapshot file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Snapshot is the on-disk format.
type Snapshot struct {
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"createdAt"`
	Source    string                     `json:"source"`
	Slots     map[string]json.RawMessage `json:"slots"`
}

type Manager struct {
	store     storage.Provider
	backupDir string
	now       func() time.Time
}

// NewManager keeps snapshots of store under configDir/backups.
func NewManager(store storage.Provider, configDir string) *Manager {
	return &Manager{
		store:     store,
		backupDir: filepath.Join(configDir, constants.BackupDirName),
		now:       time.Now,
	}
}

func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes a snapshot and prunes the oldest beyond MaxBackups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// skipRotation is set by restore so the pre-restore snapshot never evicts
// the file being restored.
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	snap := Snapshot{
		Version:   snapshotVersion,
		CreatedAt: m.now().UTC(),
		Source:    m.store.GetConfigPath(),
		Slots:     make(map[string]json.RawMessage),
	}
	for _, slot := range constants.Slots {
		data, err := m.store.Read(slot)
		if errors.Is(err, storage.ErrSlotNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read slot %s: %w", slot, err)
		}
		if !json.Valid(data) {
			return "", fmt.Errorf("slot %s does not hold valid JSON", slot)
		}
		snap.Slots[slot] = data
	}

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return path, nil
}

// nextPath picks a free file name, adding seconds and then a counter on collision.
func (m *Manager) nextPath() (string, error) {
	now := m.now()
	name := func(stamp string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}

	path := name(now.Format("20060102-1504"))
	if !exists(path) {
		return path, nil
	}
	stamp := now.Format("20060102-150405")
	path = name(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", errors.New("failed to generate unique backup filename")
		}
		path = name(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return path, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListBackups returns snapshots newest first.
func (m *Manager) ListBackups() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
			continue
		}
		timestamp, ok := parseStamp(strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix))
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseStamp accepts YYYYMMDD-HHMM and YYYYMMDD-HHMMSS with an optional -N counter.
func parseStamp(s string) (time.Time, bool) {
	if parts := strings.Split(s, "-"); len(parts) == 3 {
		s = parts[0] + "-" + parts[1]
	}
	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// ReadSnapshot loads and checks a snapshot file.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	if snap.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported backup version %d", snap.Version)
	}
	if habits, ok := snap.Slots[constants.HabitsSlot]; ok {
		var elems []json.RawMessage
		if err := json.Unmarshal(habits, &elems); err != nil {
			return Snapshot{}, fmt.Errorf("backup habits slot is not a list: %w", err)
		}
	}
	return snap, nil
}

// RestoreBackup snapshots the current store, then replaces every known slot
// with the contents of path. Slots missing from the snapshot are deleted.
func (m *Manager) RestoreBackup(path string) (string, error) {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return "", err
	}

	current, err := m.createBackup(true)
	if err != nil {
		return "", fmt.Errorf("failed to backup current store before restore: %w", err)
	}

	for _, slot := range constants.Slots {
		data, ok := snap.Slots[slot]
		if !ok {
			if err := m.store.Delete(slot); err != nil && !errors.Is(err, storage.ErrSlotNotFound) {
				return current, fmt.Errorf("failed to clear slot %s: %w", slot, err)
			}
			continue
		}
		if err := m.store.Write(slot, data); err != nil {
			return current, fmt.Errorf("failed to restore slot %s: %w", slot, err)
		}
	}
	logger.Info("Restored backup", "path", path, "slots", len(snap.Slots))
	return current, nil
}
