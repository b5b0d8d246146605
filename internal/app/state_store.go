package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// StateStore persists the full SessionState snapshot in a single slot.
// Load must degrade to an empty state when the slot is missing or corrupt;
// the session manager never fails startup over bad stored data. Save
// replaces the whole snapshot (last write wins; there is only one writer).
type StateStore interface {
	Load() (SessionState, error)
	Save(state SessionState) error
}

// DefaultStateDir resolves the storage directory, preferring XDG data dirs
// and falling back to ~/.local/share, then the system temp dir.
func DefaultStateDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "chat-cli")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "chat-cli")
	}
	return filepath.Join(os.TempDir(), "chat-cli")
}

// FileStateStore keeps the snapshot as one JSON document on disk.
type FileStateStore struct {
	Path string
}

func NewFileStateStore(path string) *FileStateStore {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(DefaultStateDir(), "state.json")
	}
	return &FileStateStore{Path: path}
}

func (s *FileStateStore) Load() (SessionState, error) {
	var state SessionState
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SessionState{}, nil
		}
		return SessionState{}, err
	}
	if len(data) == 0 {
		return SessionState{}, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt slot: start over rather than wedging the app.
		return SessionState{}, nil
	}
	return state, nil
}

func (s *FileStateStore) Save(state SessionState) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.Path, payload, 0o644)
}
