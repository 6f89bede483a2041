package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/studyhub/internal/config"
	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
	"github.com/MarcoPoloResearchLab/studyhub/internal/schedule"
	"github.com/MarcoPoloResearchLab/studyhub/internal/server"
)

func testConfig(driver, path string) config.AppConfig {
	return config.AppConfig{
		HTTPAddress:    "127.0.0.1:0",
		AllowedOrigins: []string{"*"},
		StorageDriver:  driver,
		StoragePath:    path,
		LogLevel:       "error",
		AutosaveDelay:  time.Second,
		TickInterval:   300 * time.Millisecond,
	}
}

func TestNewPersistsAcrossRestartsPerDriver(t *testing.T) {
	testCases := []struct {
		name   string
		driver string
		path   func(t *testing.T) string
	}{
		{name: "sqlite", driver: config.DriverSQLite, path: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "studyhub.db")
		}},
		{name: "badger", driver: config.DriverBadger, path: func(t *testing.T) string {
			return t.TempDir()
		}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(testCase.driver, testCase.path(t))

			first, err := New(ctx, cfg, Options{})
			if err != nil {
				t.Fatalf("failed to open app: %v", err)
			}
			note, err := first.Notes.Create(ctx, notes.NoteInput{Title: "Persisted", Subject: "Math"})
			if err != nil {
				t.Fatalf("create failed: %v", err)
			}
			if err := first.Close(ctx); err != nil {
				t.Fatalf("close failed: %v", err)
			}

			second, err := New(ctx, cfg, Options{})
			if err != nil {
				t.Fatalf("failed to reopen app: %v", err)
			}
			t.Cleanup(func() {
				_ = second.Close(ctx)
			})
			if stored, found := second.Notes.FindByID(note.ID); !found || stored.Title != "Persisted" {
				t.Fatalf("expected note after restart, got %#v found=%v", stored, found)
			}
		})
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	if _, _, err := OpenStore(testConfig("postgres", "x"), nil, nil); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestCloseFlushesPendingDraft(t *testing.T) {
	ctx := context.Background()
	scheduler := schedule.NewManualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	application, err := New(ctx, testConfig(config.DriverMemory, ""), Options{Clock: scheduler.Now, Scheduler: scheduler})
	if err != nil {
		t.Fatalf("failed to open app: %v", err)
	}
	note, err := application.Notes.Create(ctx, notes.NoteInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	content := "unsaved words"
	if err := application.Autosaver.Edit(ctx, note.ID, notes.NoteUpdate{Content: &content}); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if err := application.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if stored, _ := application.Notes.FindByID(note.ID); stored.Content != content {
		t.Fatalf("close should flush the draft, got %q", stored.Content)
	}
}

func TestTimerTicksReachDispatcher(t *testing.T) {
	ctx := context.Background()
	scheduler := schedule.NewManualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	application, err := New(ctx, testConfig(config.DriverMemory, ""), Options{Clock: scheduler.Now, Scheduler: scheduler})
	if err != nil {
		t.Fatalf("failed to open app: %v", err)
	}
	t.Cleanup(func() {
		_ = application.Close(ctx)
	})

	events, cleanup := application.Dispatcher.Subscribe(ctx)
	defer cleanup()

	if _, err := application.Timer.Start("Physics"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	scheduler.Advance(300 * time.Millisecond)

	select {
	case event := <-events:
		if event.Type != server.EventSessionTick {
			t.Fatalf("expected tick event, got %#v", event)
		}
	default:
		t.Fatalf("expected a tick event")
	}
}

func TestHandlerServesAPI(t *testing.T) {
	ctx := context.Background()
	application, err := New(ctx, testConfig(config.DriverMemory, ""), Options{})
	if err != nil {
		t.Fatalf("failed to open app: %v", err)
	}
	t.Cleanup(func() {
		_ = application.Close(ctx)
	})
	handler, err := application.Handler()
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/plans", strings.NewReader(`{"title":"Revise"}`))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
	}
	if len(application.Plans.All()) != 1 {
		t.Fatalf("expected plan stored through the API")
	}
}
