package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
	"github.com/MarcoPoloResearchLab/studyhub/internal/preferences"
	"github.com/MarcoPoloResearchLab/studyhub/internal/schedule"
	"github.com/MarcoPoloResearchLab/studyhub/internal/sessions"
	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"github.com/gin-gonic/gin"
)

type sequentialIDs struct {
	prefix string
	next   int
}

func (p *sequentialIDs) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("%s-%d", p.prefix, p.next), nil
}

type testServer struct {
	handler    http.Handler
	store      *storage.MemoryStore
	scheduler  *schedule.ManualScheduler
	dispatcher *Dispatcher
	notes      *notes.Repository
	plans      *plans.Repository
	sessions   *sessions.Repository
	timer      *sessions.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	server := &testServer{
		store:      storage.NewMemoryStore(),
		scheduler:  schedule.NewManualScheduler(time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)),
		dispatcher: NewDispatcher(),
	}

	noteRepository, err := notes.NewRepository(ctx, notes.RepositoryConfig{
		Store:      server.store,
		Clock:      server.scheduler.Now,
		IDProvider: &sequentialIDs{prefix: "note"},
	})
	if err != nil {
		t.Fatalf("failed to build notes repository: %v", err)
	}
	autosaver, err := notes.NewAutosaver(notes.AutosaverConfig{
		Repository: noteRepository,
		Scheduler:  server.scheduler,
		Delay:      time.Second,
	})
	if err != nil {
		t.Fatalf("failed to build autosaver: %v", err)
	}
	planRepository, err := plans.NewRepository(ctx, plans.RepositoryConfig{
		Store:      server.store,
		IDProvider: &sequentialIDs{prefix: "plan"},
	})
	if err != nil {
		t.Fatalf("failed to build plans repository: %v", err)
	}
	sessionRepository, err := sessions.NewRepository(ctx, sessions.RepositoryConfig{Store: server.store})
	if err != nil {
		t.Fatalf("failed to build sessions repository: %v", err)
	}
	timer, err := sessions.NewEngine(sessions.EngineConfig{
		Recorder:   sessionRepository,
		Clock:      server.scheduler.Now,
		IDProvider: &sequentialIDs{prefix: "session"},
		Scheduler:  server.scheduler,
	})
	if err != nil {
		t.Fatalf("failed to build timer: %v", err)
	}
	preferenceStore, err := preferences.NewStore(preferences.Config{Store: server.store})
	if err != nil {
		t.Fatalf("failed to build preferences: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		Notes:             noteRepository,
		Autosaver:         autosaver,
		Plans:             planRepository,
		Sessions:          sessionRepository,
		Timer:             timer,
		Preferences:       preferenceStore,
		Dispatcher:        server.dispatcher,
		HeartbeatInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	server.handler = handler
	server.notes = noteRepository
	server.plans = planRepository
	server.sessions = sessionRepository
	server.timer = timer
	return server
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var payload T
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode body %q: %v", recorder.Body.String(), err)
	}
	return payload
}

func expectStatus(t *testing.T, recorder *httptest.ResponseRecorder, status int) {
	t.Helper()
	if recorder.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, recorder.Code, recorder.Body.String())
	}
}
