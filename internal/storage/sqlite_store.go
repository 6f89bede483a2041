package storage

import (
	"context"
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/studyhub/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	columnEntryKey   = "entry_key"
	columnEntryValue = "entry_value"
	columnUpdatedAt  = "updated_at_s"
	queryEntryKey    = columnEntryKey + " = ?"
)

// SQLiteStore persists key-value pairs in the kv_entries table.
type SQLiteStore struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewSQLiteStore wraps an opened GORM handle. The kv_entries table must exist;
// database.OpenSQLite migrates it.
func NewSQLiteStore(db *gorm.DB, clock func() time.Time) (*SQLiteStore, error) {
	if db == nil {
		return nil, ErrMissingStore
	}
	if clock == nil {
		clock = time.Now
	}
	return &SQLiteStore{db: db, clock: clock}, nil
}

// Get implements KeyValueStore.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry database.KeyValueEntry
	err := s.db.WithContext(ctx).Where(queryEntryKey, key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set implements KeyValueStore.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	entry := database.KeyValueEntry{
		Key:              key,
		Value:            value,
		UpdatedAtSeconds: s.clock().UTC().Unix(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: columnEntryKey}},
		DoUpdates: clause.AssignmentColumns([]string{columnEntryValue, columnUpdatedAt}),
	}).Create(&entry).Error
}
