package storage

import (
	"context"
	"testing"
)

var testKeys = CollectionKeys{Primary: "records", Legacy: "records-legacy"}

func TestLoadCollectionMissingKeysYieldsEmpty(t *testing.T) {
	items := LoadCollection[testRecord](context.Background(), NewMemoryStore(), testKeys, nil)
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", items)
	}
}

func TestLoadCollectionPrefersPrimary(t *testing.T) {
	store := NewMemoryStore()
	mustSet(t, store, testKeys.Primary, `[{"id":"a","name":"primary"}]`)
	mustSet(t, store, testKeys.Legacy, `[{"id":"b","name":"legacy"}]`)

	items := LoadCollection[testRecord](context.Background(), store, testKeys, nil)
	if len(items) != 1 || items[0].Name != "primary" {
		t.Fatalf("expected primary payload, got %#v", items)
	}
}

func TestLoadCollectionFallsBackToLegacy(t *testing.T) {
	store := NewMemoryStore()
	mustSet(t, store, testKeys.Legacy, `[{"id":"b","name":"legacy"}]`)

	items := LoadCollection[testRecord](context.Background(), store, testKeys, nil)
	if len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("expected legacy payload, got %#v", items)
	}
}

func TestLoadCollectionRecoversFromCorruptPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed", payload: `[{"id":`},
		{name: "object", payload: `{"id":"a"}`},
		{name: "null", payload: `null`},
		{name: "number", payload: `42`},
		{name: "empty-string", payload: ``},
		{name: "wrong-element-type", payload: `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			mustSet(t, store, testKeys.Primary, tt.payload)
			mustSet(t, store, testKeys.Legacy, `[{"id":"legacy"}]`)

			items := LoadCollection[testRecord](context.Background(), store, testKeys, nil)
			if len(items) != 0 {
				t.Fatalf("expected empty collection for %q, got %#v", tt.payload, items)
			}
		})
	}
}

func TestSaveCollectionMirrorsLegacyKey(t *testing.T) {
	store := NewMemoryStore()
	items := []testRecord{{ID: "a", Name: "first"}}

	if err := SaveCollection(context.Background(), store, testKeys, items); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	primary := mustGet(t, store, testKeys.Primary)
	legacy := mustGet(t, store, testKeys.Legacy)
	if primary != legacy {
		t.Fatalf("expected identical payloads, primary=%s legacy=%s", primary, legacy)
	}
	if primary != `[{"id":"a","name":"first"}]` {
		t.Fatalf("unexpected payload %s", primary)
	}
}

func TestSaveCollectionWithoutLegacyWritesPrimaryOnly(t *testing.T) {
	store := NewMemoryStore()
	keys := CollectionKeys{Primary: "only"}

	if err := SaveCollection[testRecord](context.Background(), store, keys, nil); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if got := mustGet(t, store, "only"); got != "[]" {
		t.Fatalf("expected empty array payload, got %s", got)
	}
	if store.Keys() != 1 {
		t.Fatalf("expected exactly one key, got %d", store.Keys())
	}
}

func TestLegacyMigrationIsTransparentAndIdempotent(t *testing.T) {
	store := NewMemoryStore()
	legacyPayload := `[{"id":"n1","name":"kept"},{"id":"n2","name":"also kept"}]`
	mustSet(t, store, testKeys.Legacy, legacyPayload)

	ctx := context.Background()
	loaded := LoadCollection[testRecord](ctx, store, testKeys, nil)
	if len(loaded) != 2 {
		t.Fatalf("expected legacy content, got %#v", loaded)
	}

	for round := 0; round < 2; round++ {
		if err := SaveCollection(ctx, store, testKeys, loaded); err != nil {
			t.Fatalf("unexpected save error: %v", err)
		}
		if primary := mustGet(t, store, testKeys.Primary); primary != legacyPayload {
			t.Fatalf("round %d: primary payload %s differs from legacy content", round, primary)
		}
		if legacy := mustGet(t, store, testKeys.Legacy); legacy != legacyPayload {
			t.Fatalf("round %d: legacy payload %s changed", round, legacy)
		}
		loaded = LoadCollection[testRecord](ctx, store, testKeys, nil)
	}
}

func TestSaveCollectionReportsWriteFailure(t *testing.T) {
	store := newFailingStore()
	store.failWrites = true

	if err := SaveCollection(context.Background(), store, testKeys, []testRecord{{ID: "a"}}); err == nil {
		t.Fatalf("expected write failure to surface")
	}
}
