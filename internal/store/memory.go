// internal/store/memory.go
//
// Session persistence port and its in-memory implementation.
//
// The game core only needs a tiny key-value contract: read a blob, write a
// blob. Implementations may be backed by memory (this file), SQLite
// (sqlite.go), Redis, etc.
//
// Characteristics of the memory store:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Blobs are copied in and out, so callers cannot alias stored bytes.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Store defines the persistence interface for session blobs.
type Store interface {
	// Get returns the blob under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (blob []byte, ok bool, err error)

	// Set stores or replaces the blob under key.
	Set(ctx context.Context, key string, blob []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards blobs
	blobs map[string][]byte // keyed by session key
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{blobs: make(map[string][]byte)}
}

func (m *memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *memory) Set(ctx context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memory) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	for k := range m.blobs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
