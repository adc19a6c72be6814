// Package storage provides the durable key-value layer the conversation store
// persists into: the process-side equivalent of browser local storage.
// Backends are pluggable (files, SQLite, memory) and stateless with respect to
// callers: every call performs its own I/O.
package storage

import "context"

// Entry is a key-value pair. Keys are /-separated paths; values are raw bytes.
type Entry struct {
	Key   string
	Value []byte
}

// Store translates between a backend and the flat key-value namespace.
type Store interface {
	// List returns all keys present in the store, sorted.
	List(ctx context.Context) ([]string, error)
	// Load retrieves entries for the specified keys. A missing key fails the
	// whole call with ErrKeyNotFound.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save persists entries, creating or overwriting as needed.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
