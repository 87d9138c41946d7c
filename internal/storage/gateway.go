// Package storage is the persistence gateway: a durable key/value store for
// JSON-serialized collections, plus a single-writer queue that applies
// snapshot writes strictly in the order they were produced.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Keys under which the tracker persists its collections.
const (
	KeyJobs         = "jobs"
	KeyWorkSessions = "work_sessions"
	KeySettings     = "settings"
)

// Gateway reads and writes whole serialized values by key.
type Gateway interface {
	// Load returns the stored value for key. found is false when nothing has
	// been stored yet; that is not an error.
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, data []byte) error
}

// BaseDir returns the root data directory (~/.wdt), honouring WDT_HOME.
func BaseDir() (string, error) {
	if dir := os.Getenv("WDT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wdt"), nil
}
