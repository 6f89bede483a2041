package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func openTestCollection(t *testing.T, store KeyValueStore) *Collection[testRecord] {
	t.Helper()
	collection, err := OpenCollection[testRecord](context.Background(), CollectionConfig{
		Store: store,
		Keys:  testKeys,
	})
	if err != nil {
		t.Fatalf("failed to open collection: %v", err)
	}
	return collection
}

func TestOpenCollectionRequiresStore(t *testing.T) {
	if _, err := OpenCollection[testRecord](context.Background(), CollectionConfig{}); !errors.Is(err, ErrMissingStore) {
		t.Fatalf("expected ErrMissingStore, got %v", err)
	}
}

func TestCollectionMutationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	collection := openTestCollection(t, store)

	assertPersisted := func(step string) {
		t.Helper()
		reloaded := LoadCollection[testRecord](ctx, store, testKeys, nil)
		if !reflect.DeepEqual(reloaded, collection.All()) {
			t.Fatalf("%s: persisted %#v differs from memory %#v", step, reloaded, collection.All())
		}
	}

	if err := collection.Prepend(ctx, testRecord{ID: "a", Name: "first"}); err != nil {
		t.Fatalf("prepend failed: %v", err)
	}
	assertPersisted("prepend a")

	if err := collection.Prepend(ctx, testRecord{ID: "b", Name: "second"}); err != nil {
		t.Fatalf("prepend failed: %v", err)
	}
	assertPersisted("prepend b")
	if got := collection.All(); got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected most recent first, got %#v", got)
	}

	updated, found, err := collection.Update(ctx, "a", func(record *testRecord) {
		record.Name = "renamed"
	})
	if err != nil || !found {
		t.Fatalf("update failed: found=%v err=%v", found, err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("expected updated record to be returned, got %#v", updated)
	}
	assertPersisted("update a")

	removed, err := collection.Remove(ctx, "b")
	if err != nil || !removed {
		t.Fatalf("remove failed: removed=%v err=%v", removed, err)
	}
	assertPersisted("remove b")

	if _, ok := collection.Find("b"); ok {
		t.Fatalf("expected b to be gone")
	}
	if record, ok := collection.Find("a"); !ok || record.Name != "renamed" {
		t.Fatalf("unexpected record a: %#v", record)
	}
}

func TestCollectionUnknownIDsAreSilentNoOps(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	collection := openTestCollection(t, store)
	if err := collection.Prepend(ctx, testRecord{ID: "a"}); err != nil {
		t.Fatalf("prepend failed: %v", err)
	}
	before := mustGet(t, store, testKeys.Primary)
	writes := len(store.writes)

	if _, found, err := collection.Update(ctx, "missing", func(record *testRecord) { record.Name = "x" }); found || err != nil {
		t.Fatalf("expected silent miss, found=%v err=%v", found, err)
	}
	if removed, err := collection.Remove(ctx, "missing"); removed || err != nil {
		t.Fatalf("expected silent miss, removed=%v err=%v", removed, err)
	}

	if len(store.writes) != writes {
		t.Fatalf("expected no writes for unknown ids")
	}
	if after := mustGet(t, store, testKeys.Primary); after != before {
		t.Fatalf("storage changed: %s -> %s", before, after)
	}
}

func TestCollectionRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	collection := openTestCollection(t, NewMemoryStore())
	if err := collection.Prepend(ctx, testRecord{ID: "a"}); err != nil {
		t.Fatalf("prepend failed: %v", err)
	}
	if err := collection.Prepend(ctx, testRecord{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if collection.Len() != 1 {
		t.Fatalf("expected single record, got %d", collection.Len())
	}
}

func TestCollectionRollsBackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	collection := openTestCollection(t, store)
	if err := collection.Prepend(ctx, testRecord{ID: "a", Name: "kept"}); err != nil {
		t.Fatalf("prepend failed: %v", err)
	}

	store.failWrites = true

	if err := collection.Prepend(ctx, testRecord{ID: "b"}); !errors.Is(err, errWriteRejected) {
		t.Fatalf("expected write failure, got %v", err)
	}
	if _, _, err := collection.Update(ctx, "a", func(record *testRecord) { record.Name = "lost" }); err == nil {
		t.Fatalf("expected update failure")
	}
	if _, err := collection.Remove(ctx, "a"); err == nil {
		t.Fatalf("expected remove failure")
	}

	all := collection.All()
	if len(all) != 1 || all[0].Name != "kept" {
		t.Fatalf("expected in-memory state to be rolled back, got %#v", all)
	}
}

func TestCollectionKeepsKeysInSyncWhenLegacyWriteFails(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	collection := openTestCollection(t, store)
	if err := collection.Prepend(ctx, testRecord{ID: "a", Name: "kept"}); err != nil {
		t.Fatalf("prepend failed: %v", err)
	}

	store.failKey = testKeys.Legacy

	if err := collection.Prepend(ctx, testRecord{ID: "b"}); !errors.Is(err, errWriteRejected) {
		t.Fatalf("expected legacy write failure, got %v", err)
	}
	if _, err := collection.Remove(ctx, "a"); !errors.Is(err, errWriteRejected) {
		t.Fatalf("expected legacy write failure, got %v", err)
	}

	primary := mustGet(t, store, testKeys.Primary)
	legacy := mustGet(t, store, testKeys.Legacy)
	if primary != legacy {
		t.Fatalf("expected keys to match, primary=%s legacy=%s", primary, legacy)
	}
	reloaded := LoadCollection[testRecord](ctx, store, testKeys, nil)
	if !reflect.DeepEqual(reloaded, collection.All()) {
		t.Fatalf("persisted %#v differs from memory %#v", reloaded, collection.All())
	}
	if len(reloaded) != 1 || reloaded[0].ID != "a" {
		t.Fatalf("expected only the committed record, got %#v", reloaded)
	}
}

func TestSaveCollectionRestoresLegacyFallbackWhenMirrorFails(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	mustSet(t, store, testKeys.Legacy, `[{"id":"old","name":"legacy"}]`)
	store.failKey = testKeys.Legacy

	if err := SaveCollection(ctx, store, testKeys, []testRecord{{ID: "new"}}); !errors.Is(err, errWriteRejected) {
		t.Fatalf("expected legacy write failure, got %v", err)
	}
	if got := mustGet(t, store, testKeys.Primary); got != `[{"id":"old","name":"legacy"}]` {
		t.Fatalf("expected primary to hold the legacy payload, got %s", got)
	}
}

func TestCollectionAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	collection := openTestCollection(t, NewMemoryStore())
	if err := collection.Prepend(ctx, testRecord{ID: "a", Name: "original"}); err != nil {
		t.Fatalf("prepend failed: %v", err)
	}
	snapshot := collection.All()
	snapshot[0].Name = "mutated"

	if record, _ := collection.Find("a"); record.Name != "original" {
		t.Fatalf("collection mutated through All(): %#v", record)
	}
}

func TestServiceErrorCode(t *testing.T) {
	err := NewServiceError("notes.create", "persist_failed", errWriteRejected)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if serviceErr.Code() != "notes.create.persist_failed" {
		t.Fatalf("unexpected code %q", serviceErr.Code())
	}
	if !errors.Is(err, errWriteRejected) {
		t.Fatalf("expected cause to unwrap")
	}
}
