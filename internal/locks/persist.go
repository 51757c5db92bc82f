package locks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	snapshotFileName = "locksmith.json"
	snapshotVersion  = 1
)

// Snapshot is the serialized lock list plus the settings that survive a
// restart. Pending flags are deliberately absent: no command outlives the
// process, so a restored record is never pending.
type Snapshot struct {
	Version       int     `json:"version"`
	SortKey       SortKey `json:"sort_key"`
	SortAscending bool    `json:"sort_ascending"`
	AutoRefresh   bool    `json:"auto_refresh"`
	Locks         []Lock  `json:"locks"`
}

// SnapshotPath returns the snapshot file location inside dir.
func SnapshotPath(dir string) string {
	return filepath.Join(dir, snapshotFileName)
}

// SaveSnapshot writes the snapshot to dir as indented JSON. The write is
// atomic (temp file then rename) and a file lock is held for cross-process
// safety.
func SaveSnapshot(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	fl := NewFileLock(dir)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	snap.Version = snapshotVersion
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	target := SnapshotPath(dir)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// LoadSnapshot reads the snapshot from dir. A missing file or a snapshot
// from an unknown format version yields (nil, nil): both mean "start
// fresh", not failure. A file lock is held during the read.
func LoadSnapshot(dir string) (*Snapshot, error) {
	if _, err := os.Stat(SnapshotPath(dir)); os.IsNotExist(err) {
		return nil, nil
	}

	fl := NewFileLock(dir)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(SnapshotPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snap.Version != snapshotVersion {
		return nil, nil
	}
	if snap.Locks == nil {
		snap.Locks = []Lock{}
	}
	return &snap, nil
}
