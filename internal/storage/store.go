// Package storage provides the key-value substrate the application persists to,
// the collection adapter that maps entity slices onto JSON-array values under a
// primary key with an optional legacy mirror, and the generic in-memory
// collection every entity repository is built on.
package storage

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrMissingStore indicates that a key-value store dependency was not supplied.
	ErrMissingStore = errors.New("storage: key-value store is required")
	// ErrEmptyKey indicates that a blank key was used.
	ErrEmptyKey = errors.New("storage: empty key")
)

// KeyValueStore is the string-keyed, string-valued substrate collections are
// persisted to. Get reports found=false for absent keys; err is reserved for
// substrate failures.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is a process-local KeyValueStore.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements KeyValueStore.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set implements KeyValueStore.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Keys returns the number of keys currently held.
func (s *MemoryStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
