package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Storage keys written by the application.
const (
	KeyNotes            = "notes"
	KeyNotesLegacy      = "notes-system-data"
	KeySessions         = "studySessions"
	KeySessionsLegacy   = "notes-session-data"
	KeyPlans            = "studyPlans"
	KeyPlansLegacy      = "study-plans-data"
	KeySidebarCollapsed = "sidebarCollapsed"
	KeyLandingTheme     = "landingTheme"
)

const emptyArray = "[]"

var errNotArray = errors.New("storage: stored value is not a json array")

// CollectionKeys names where a collection lives. When Legacy is set, reads fall
// back to it and every write mirrors to it.
type CollectionKeys struct {
	Primary string
	Legacy  string
}

var (
	// NotesKeys locates the note collection.
	NotesKeys = CollectionKeys{Primary: KeyNotes, Legacy: KeyNotesLegacy}
	// SessionsKeys locates the finalized study session collection.
	SessionsKeys = CollectionKeys{Primary: KeySessions, Legacy: KeySessionsLegacy}
	// PlansKeys locates the plan collection.
	PlansKeys = CollectionKeys{Primary: KeyPlans, Legacy: KeyPlansLegacy}
)

// LoadCollection reads the collection stored under keys. Missing keys, read
// failures, malformed JSON and non-array payloads all yield an empty
// collection; failures are logged and never returned.
func LoadCollection[T any](ctx context.Context, store KeyValueStore, keys CollectionKeys, logger *zap.Logger) []T {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		logger.Error("collection load skipped", zap.String("key", keys.Primary), zap.Error(ErrMissingStore))
		return []T{}
	}

	raw, source, found, err := readWithFallback(ctx, store, keys)
	if err != nil {
		logger.Error("collection read failed",
			zap.String("key", keys.Primary),
			zap.String("source", source),
			zap.Error(err))
		return []T{}
	}
	if !found {
		return []T{}
	}

	items, err := decodeArray[T](raw)
	if err != nil {
		logger.Warn("collection parse failed, starting empty",
			zap.String("key", keys.Primary),
			zap.String("source", source),
			zap.Error(err))
		return []T{}
	}
	return items
}

// SaveCollection serializes items as a JSON array and writes it to the primary
// key and, when configured, the legacy key. When the legacy write fails the
// primary key is put back to the payload reads saw before the call, so the two
// keys never disagree.
func SaveCollection[T any](ctx context.Context, store KeyValueStore, keys CollectionKeys, items []T) error {
	if store == nil {
		return ErrMissingStore
	}
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", keys.Primary, err)
	}
	if keys.Legacy == "" {
		if err := store.Set(ctx, keys.Primary, string(payload)); err != nil {
			return fmt.Errorf("storage: write %s: %w", keys.Primary, err)
		}
		return nil
	}

	before, _, found, err := readWithFallback(ctx, store, keys)
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", keys.Primary, err)
	}
	if !found {
		before = emptyArray
	}
	if err := store.Set(ctx, keys.Primary, string(payload)); err != nil {
		return fmt.Errorf("storage: write %s: %w", keys.Primary, err)
	}
	if err := store.Set(ctx, keys.Legacy, string(payload)); err != nil {
		writeErr := fmt.Errorf("storage: write %s: %w", keys.Legacy, err)
		if restoreErr := store.Set(ctx, keys.Primary, before); restoreErr != nil {
			return errors.Join(writeErr, fmt.Errorf("storage: restore %s: %w", keys.Primary, restoreErr))
		}
		return writeErr
	}
	return nil
}

func readWithFallback(ctx context.Context, store KeyValueStore, keys CollectionKeys) (string, string, bool, error) {
	raw, found, err := store.Get(ctx, keys.Primary)
	if err != nil || found {
		return raw, "primary", found, err
	}
	if keys.Legacy == "" {
		return "", "primary", false, nil
	}
	raw, found, err = store.Get(ctx, keys.Legacy)
	return raw, "legacy", found, err
}

func decodeArray[T any](raw string) ([]T, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("storage: invalid json")
		}
		return nil, errNotArray
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
