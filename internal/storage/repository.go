package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrDuplicateID indicates that an inserted record reused an existing id.
var ErrDuplicateID = errors.New("storage: duplicate id")

// Entity is implemented by every persisted record.
type Entity interface {
	EntityID() string
}

// ServiceError carries a dotted operation code alongside the underlying cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the operation code, e.g. notes.create.persist_failed.
func (e *ServiceError) Code() string {
	return e.code
}

// NewServiceError builds a ServiceError with code "<operation>.<reason>".
func NewServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// CollectionConfig describes where a collection is persisted.
type CollectionConfig struct {
	Store  KeyValueStore
	Keys   CollectionKeys
	Logger *zap.Logger
}

// Collection holds one entity collection in memory and writes it through to
// the store after every mutation. Slice order is insertion order; display
// order is computed by callers.
type Collection[T Entity] struct {
	mu     sync.RWMutex
	store  KeyValueStore
	keys   CollectionKeys
	logger *zap.Logger
	items  []T
}

// OpenCollection loads the persisted collection and returns it ready for use.
func OpenCollection[T Entity](ctx context.Context, cfg CollectionConfig) (*Collection[T], error) {
	if cfg.Store == nil {
		return nil, ErrMissingStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		store:  cfg.Store,
		keys:   cfg.Keys,
		logger: logger,
		items:  LoadCollection[T](ctx, cfg.Store, cfg.Keys, logger),
	}, nil
}

// All returns a copy of the collection in insertion order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Find returns the record with the given id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	index := c.indexLocked(id)
	if index < 0 {
		var zero T
		return zero, false
	}
	return c.items[index], true
}

// Prepend inserts item at the front and persists.
func (c *Collection[T]) Prepend(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(item.EntityID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, item.EntityID())
	}
	previous := c.items
	next := make([]T, 0, len(previous)+1)
	next = append(next, item)
	next = append(next, previous...)
	return c.commitLocked(ctx, previous, next)
}

// Update applies mutate to the record with the given id and persists. It
// reports false without touching storage when the id is unknown.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T)) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	index := c.indexLocked(id)
	if index < 0 {
		return zero, false, nil
	}
	previous := c.items
	next := make([]T, len(previous))
	copy(next, previous)
	mutate(&next[index])
	if err := c.commitLocked(ctx, previous, next); err != nil {
		return zero, true, err
	}
	return next[index], true, nil
}

// Remove deletes the record with the given id and persists. It reports false
// without touching storage when the id is unknown.
func (c *Collection[T]) Remove(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	index := c.indexLocked(id)
	if index < 0 {
		return false, nil
	}
	previous := c.items
	next := make([]T, 0, len(previous)-1)
	next = append(next, previous[:index]...)
	next = append(next, previous[index+1:]...)
	return true, c.commitLocked(ctx, previous, next)
}

func (c *Collection[T]) commitLocked(ctx context.Context, previous, next []T) error {
	c.items = next
	if err := SaveCollection(ctx, c.store, c.keys, next); err != nil {
		c.items = previous
		c.logger.Error("collection persist failed",
			zap.String("key", c.keys.Primary),
			zap.Error(err))
		return err
	}
	return nil
}

func (c *Collection[T]) indexLocked(id string) int {
	for index, item := range c.items {
		if item.EntityID() == id {
			return index
		}
	}
	return -1
}
