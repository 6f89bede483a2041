package notes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
)

var errWriteRejected = errors.New("write rejected")

type sequentialIDs struct {
	next int
}

func (p *sequentialIDs) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("note-%d", p.next), nil
}

type brokenIDs struct{}

func (brokenIDs) NewID() (string, error) {
	return "", errors.New("entropy exhausted")
}

type flakyStore struct {
	*storage.MemoryStore
	failWrites bool
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failWrites {
		return errWriteRejected
	}
	return s.MemoryStore.Set(ctx, key, value)
}

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	return c.now
}

func (c *steppingClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestRepository(t *testing.T, store storage.KeyValueStore, clk *steppingClock) *Repository {
	t.Helper()
	repository, err := NewRepository(context.Background(), RepositoryConfig{
		Store:      store,
		Clock:      clk.Now,
		IDProvider: &sequentialIDs{},
	})
	if err != nil {
		t.Fatalf("failed to build repository: %v", err)
	}
	return repository
}

func newTestClock() *steppingClock {
	return &steppingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func stringPtr(value string) *string {
	return &value
}
