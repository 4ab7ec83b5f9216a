package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the fitted model as a JSON artifact at a fixed path.
// There is a single global slot: Save unconditionally overwrites any prior
// copy. Staleness is detected through Model.DatasetHash, not versioning.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted model. It returns fs.ErrNotExist (wrapped) when no
// artifact exists yet; callers treat that as a cold start, not a failure.
func (s *FileStore) Load() (*Model, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if m.Root == nil {
		return nil, fmt.Errorf("model artifact %s has no tree", s.path)
	}
	return &m, nil
}

// Save writes the model, replacing any existing artifact. The write goes
// through a temp file and rename so a crash mid-write never leaves a
// truncated artifact behind.
func (s *FileStore) Save(m *Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model artifact: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace model artifact: %w", err)
	}
	return nil
}

// IsNotExist reports whether err means no artifact has been written yet.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// HashDataset returns the hex SHA-256 of the raw dataset bytes. The hash is
// recorded in the artifact so a changed dataset invalidates the persisted
// model instead of silently serving stale predictions.
func HashDataset(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
