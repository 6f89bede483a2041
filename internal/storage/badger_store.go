package storage

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// BadgerStore persists key-value pairs in an embedded Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database in dir. An empty dir opens an
// in-memory instance.
func OpenBadger(dir string, logger *zap.Logger) (*BadgerStore, error) {
	options := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		options = options.WithInMemory(true)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("badger store opened", zap.String("path", dir), zap.Bool("in_memory", dir == ""))
	}
	return &BadgerStore{db: db}, nil
}

// Get implements KeyValueStore.
func (s *BadgerStore) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

// Set implements KeyValueStore.
func (s *BadgerStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Close releases the database files.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
