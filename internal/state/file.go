package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

// FileBackend stores the state map as an indented JSON object keyed by ticker.
type FileBackend struct {
	Path string
}

// NewFileBackend creates a file backend at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (f *FileBackend) Name() string { return "file" }

// Read loads the JSON state file. A missing file is not an error.
func (f *FileBackend) Read(_ context.Context) (model.StateMap, bool, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "read state file")
	}
	var m model.StateMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, errors.Wrap(err, "decode state file")
	}
	if m == nil {
		m = model.StateMap{}
	}
	return m, true, nil
}

// Write replaces the state file atomically: the map is written to a temp file in the
// same directory, synced, then renamed over the target.
func (f *FileBackend) Write(_ context.Context, m model.StateMap) error {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp state file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(err, "write temp state file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(err, "sync temp state file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "close temp state file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return errors.Wrap(err, "chmod temp state file")
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		cleanup()
		return errors.Wrap(err, "replace state file")
	}
	return nil
}
