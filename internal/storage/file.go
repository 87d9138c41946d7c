package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var validKey = regexp.MustCompile(`^[a-z0-9_]+$`)

// FileGateway stores each key as a human-readable JSON file under a base
// directory.
type FileGateway struct {
	base string
}

// NewFileGateway returns a gateway rooted at base. The directory is created
// lazily on first save.
func NewFileGateway(base string) *FileGateway {
	return &FileGateway{base: base}
}

func (g *FileGateway) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("storage error: invalid key %q", key)
	}
	return filepath.Join(g.base, key+".json"), nil
}

// Load reads the file for key. A corrupt file is moved aside to
// <file>.corrupt and reported as an error.
func (g *FileGateway) Load(_ context.Context, key string) ([]byte, bool, error) {
	path, err := g.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if !json.Valid(data) {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, false, fmt.Errorf("corrupt JSON in %s (backed up to %s)", path, backupPath)
	}
	return data, true, nil
}

// Save atomically replaces the file for key.
func (g *FileGateway) Save(_ context.Context, key string, data []byte) error {
	path, err := g.path(key)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
