// Package kv provides the string key-value backends that hold Aurora's
// persisted state.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/guilhermegouw/aurora/internal/db"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Open creates the store for the named backend rooted at dataDir.
// An empty backend selects SQLite. A redis:// URL selects a Redis server
// and ignores dataDir.
func Open(backend, dataDir string) (Store, error) {
	if IsRedisURL(backend) {
		return NewRedisStore(backend)
	}

	switch backend {
	case "", BackendSQLite:
		database, err := db.Open(filepath.Join(dataDir, "aurora.db"))
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(database), nil
	case BackendFile:
		return NewFileStore(filepath.Join(dataDir, "store"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
