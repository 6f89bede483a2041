package sessions

import (
	"context"
	"reflect"
	"testing"

	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
)

func TestRepositoryRecordsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repository, err := NewRepository(ctx, RepositoryConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to build repository: %v", err)
	}

	first := StudySession{ID: "s1", Subject: " ", StartTime: "2024-01-01T10:00:00.000Z", EndTime: "2024-01-01T10:30:00.000Z", DurationInSeconds: 1800}
	second := StudySession{ID: "s2", Subject: "Physics", DurationInSeconds: -4}
	for _, session := range []StudySession{first, second} {
		if err := repository.Record(ctx, session); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	stored, found := repository.FindByID("s1")
	if !found || stored.Subject != DefaultSubject {
		t.Fatalf("expected defaulted subject, got %#v", stored)
	}
	if stored, _ := repository.FindByID("s2"); stored.DurationInSeconds != 0 {
		t.Fatalf("negative durations clamp to zero, got %d", stored.DurationInSeconds)
	}

	reloaded, err := NewRepository(ctx, RepositoryConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.All(), repository.All()) {
		t.Fatalf("reloaded sessions differ: %#v vs %#v", reloaded.All(), repository.All())
	}
	if all := reloaded.All(); all[0].ID != "s2" {
		t.Fatalf("expected most recent first, got %#v", all)
	}
}

func TestRepositoryRejectsDuplicatesAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	repository, err := NewRepository(ctx, RepositoryConfig{Store: storage.NewMemoryStore()})
	if err != nil {
		t.Fatalf("failed to build repository: %v", err)
	}
	if err := repository.Record(ctx, StudySession{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if err := repository.Record(ctx, StudySession{ID: "dup"}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := repository.Record(ctx, StudySession{ID: "dup"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if len(repository.All()) != 1 {
		t.Fatalf("duplicate must not be stored")
	}
}

func TestFormatDuration(t *testing.T) {
	testCases := map[int64]string{
		-3:   "0s",
		45:   "45s",
		750:  "12m 30s",
		3900: "1h 5m",
	}
	for seconds, expected := range testCases {
		if got := FormatDuration(seconds); got != expected {
			t.Fatalf("FormatDuration(%d) = %q, want %q", seconds, got, expected)
		}
	}
	if got := FormatClock(3723); got != "01:02:03" {
		t.Fatalf("FormatClock = %q", got)
	}
	summary := StudySession{Subject: "Chemistry", DurationInSeconds: 90}.Summary()
	if summary != "Studied Chemistry for 1m 30s" {
		t.Fatalf("unexpected summary %q", summary)
	}
}
