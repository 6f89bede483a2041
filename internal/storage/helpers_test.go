package storage

import (
	"context"
	"errors"
	"testing"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r testRecord) EntityID() string {
	return r.ID
}

var errWriteRejected = errors.New("write rejected")

// failingStore wraps a MemoryStore and rejects writes once failWrites is set,
// or only writes to failKey when that is set.
type failingStore struct {
	*MemoryStore
	failWrites bool
	failKey    string
	writes     []string
}

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: NewMemoryStore()}
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failWrites || (s.failKey != "" && key == s.failKey) {
		return errWriteRejected
	}
	s.writes = append(s.writes, key)
	return s.MemoryStore.Set(ctx, key, value)
}

func mustGet(t *testing.T, store KeyValueStore, key string) string {
	t.Helper()
	value, found, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected get error for %q: %v", key, err)
	}
	if !found {
		t.Fatalf("expected key %q to be present", key)
	}
	return value
}

func mustSet(t *testing.T, store KeyValueStore, key, value string) {
	t.Helper()
	if err := store.Set(context.Background(), key, value); err != nil {
		t.Fatalf("unexpected set error for %q: %v", key, err)
	}
}
