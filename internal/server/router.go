package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
	"github.com/MarcoPoloResearchLab/studyhub/internal/preferences"
	"github.com/MarcoPoloResearchLab/studyhub/internal/sessions"
	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"github.com/MarcoPoloResearchLab/studyhub/internal/views"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHeartbeatInterval = 15 * time.Second

var (
	errMissingNotesRepository    = errors.New("notes repository dependency required")
	errMissingAutosaver          = errors.New("autosaver dependency required")
	errMissingPlansRepository    = errors.New("plans repository dependency required")
	errMissingSessionsRepository = errors.New("sessions repository dependency required")
	errMissingTimer              = errors.New("session timer dependency required")
	errMissingPreferences        = errors.New("preferences dependency required")
)

// Dependencies wires the handler to the repositories it serves.
type Dependencies struct {
	Notes             *notes.Repository
	Autosaver         *notes.Autosaver
	Plans             *plans.Repository
	Sessions          *sessions.Repository
	Timer             *sessions.Engine
	Preferences       *preferences.Store
	Dispatcher        *Dispatcher
	AllowedOrigins    []string
	HeartbeatInterval time.Duration
	Logger            *zap.Logger
}

// NewHTTPHandler builds the local JSON API and its event stream.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	switch {
	case deps.Notes == nil:
		return nil, errMissingNotesRepository
	case deps.Autosaver == nil:
		return nil, errMissingAutosaver
	case deps.Plans == nil:
		return nil, errMissingPlansRepository
	case deps.Sessions == nil:
		return nil, errMissingSessionsRepository
	case deps.Timer == nil:
		return nil, errMissingTimer
	case deps.Preferences == nil:
		return nil, errMissingPreferences
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(deps.AllowedOrigins))

	handler := &httpHandler{
		notes:       deps.Notes,
		autosaver:   deps.Autosaver,
		plans:       deps.Plans,
		sessions:    deps.Sessions,
		timer:       deps.Timer,
		preferences: deps.Preferences,
		dispatcher:  dispatcher,
		heartbeat:   heartbeat,
		logger:      logger,
	}

	api := router.Group("/api")
	api.GET("/notes", handler.handleListNotes)
	api.POST("/notes", handler.handleCreateNote)
	api.POST("/notes/flush", handler.handleFlushDraft)
	api.GET("/notes/:id", handler.handleGetNote)
	api.PATCH("/notes/:id", handler.handleUpdateNote)
	api.DELETE("/notes/:id", handler.handleDeleteNote)
	api.PUT("/notes/:id/draft", handler.handleEditDraft)

	api.GET("/plans", handler.handleListPlans)
	api.POST("/plans", handler.handleSavePlan)
	api.PUT("/plans/:id", handler.handleSavePlan)
	api.POST("/plans/:id/complete", handler.handleCompletePlan)
	api.DELETE("/plans/:id", handler.handleDeletePlan)

	api.GET("/sessions", handler.handleListSessions)
	api.GET("/session", handler.handleActiveSession)
	api.POST("/session/start", handler.handleStartSession)
	api.POST("/session/pause", handler.handlePauseSession)
	api.POST("/session/end", handler.handleEndSession)

	api.GET("/subjects", handler.handleSubjects)
	api.GET("/search", handler.handleSearch)

	api.GET("/preferences", handler.handleGetPreferences)
	api.PUT("/preferences", handler.handleUpdatePreferences)

	api.GET("/events", handler.handleEvents)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Accept", "Cache-Control"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

type httpHandler struct {
	notes       *notes.Repository
	autosaver   *notes.Autosaver
	plans       *plans.Repository
	sessions    *sessions.Repository
	timer       *sessions.Engine
	preferences *preferences.Store
	dispatcher  *Dispatcher
	heartbeat   time.Duration
	logger      *zap.Logger
}

type notePayload struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type completePayload struct {
	Completed *bool `json:"completed"`
}

type startPayload struct {
	Subject string `json:"subject"`
}

type preferencesPayload struct {
	Theme            *string `json:"theme"`
	SidebarCollapsed *bool   `json:"sidebarCollapsed"`
}

type sessionStatePayload struct {
	State          string                  `json:"state"`
	ElapsedSeconds int64                   `json:"elapsedSeconds"`
	Session        *sessions.ActiveSession `json:"session"`
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	items := h.notes.All()
	if subject := trimmedQuery(c, "subject"); subject != "" {
		items = views.NotesBySubject(items, subject)
	}
	c.JSON(http.StatusOK, gin.H{"notes": items})
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	note, found := h.notes.FindByID(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	var request notePayload
	if !bindOptionalJSON(c, &request) {
		return
	}
	note, err := h.notes.Create(c.Request.Context(), notes.NoteInput{
		Title:   request.Title,
		Subject: request.Subject,
		Content: request.Content,
	})
	if err != nil {
		h.respondServiceError(c, "failed to create note", err)
		return
	}
	h.publish(EventNotesChanged, note.ID)
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	var update notes.NoteUpdate
	if !bindOptionalJSON(c, &update) {
		return
	}
	id := c.Param("id")
	note, found, err := h.notes.Update(c.Request.Context(), id, update)
	if err != nil {
		h.respondServiceError(c, "failed to update note", err)
		return
	}
	if found && !update.IsEmpty() {
		h.publish(EventNotesChanged, id)
	}
	c.JSON(http.StatusOK, gin.H{"note": nullableNote(note, found), "found": found})
}

func (h *httpHandler) handleEditDraft(c *gin.Context) {
	var update notes.NoteUpdate
	if !bindOptionalJSON(c, &update) {
		return
	}
	id := c.Param("id")
	if err := h.autosaver.Edit(c.Request.Context(), id, update); err != nil {
		h.respondServiceError(c, "failed to commit previous draft", err)
		return
	}
	preview, found := h.autosaver.Preview(id)
	c.JSON(http.StatusAccepted, gin.H{"note": nullableNote(preview, found), "pending": id})
}

func (h *httpHandler) handleFlushDraft(c *gin.Context) {
	if err := h.autosaver.Flush(c.Request.Context()); err != nil {
		h.respondServiceError(c, "failed to flush draft", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.notes.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "failed to delete note", err)
		return
	}
	if deleted {
		h.publish(EventNotesChanged, id)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *httpHandler) handleListPlans(c *gin.Context) {
	var filter views.PlanFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_filter"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": views.FilterAndSortPlans(h.plans.All(), filter)})
}

func (h *httpHandler) handleSavePlan(c *gin.Context) {
	var input plans.PlanInput
	if !bindOptionalJSON(c, &input) {
		return
	}
	if id := c.Param("id"); id != "" {
		input.ID = id
	}
	plan, err := h.plans.Save(c.Request.Context(), input)
	if err != nil {
		h.respondServiceError(c, "failed to save plan", err)
		return
	}
	h.publish(EventPlansChanged, plan.ID)
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *httpHandler) handleCompletePlan(c *gin.Context) {
	var request completePayload
	if !bindOptionalJSON(c, &request) {
		return
	}
	completed := true
	if request.Completed != nil {
		completed = *request.Completed
	}
	id := c.Param("id")
	plan, found, err := h.plans.SetCompleted(c.Request.Context(), id, completed)
	if err != nil {
		h.respondServiceError(c, "failed to complete plan", err)
		return
	}
	if found {
		h.publish(EventPlansChanged, id)
	}
	var body any
	if found {
		body = plan
	}
	c.JSON(http.StatusOK, gin.H{"plan": body, "found": found})
}

func (h *httpHandler) handleDeletePlan(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.plans.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "failed to delete plan", err)
		return
	}
	if deleted {
		h.publish(EventPlansChanged, id)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *httpHandler) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.All()})
}

func (h *httpHandler) handleActiveSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionState())
}

func (h *httpHandler) handleStartSession(c *gin.Context) {
	var request startPayload
	if !bindOptionalJSON(c, &request) {
		return
	}
	if _, err := h.timer.Start(request.Subject); err != nil {
		h.respondServiceError(c, "failed to start session", err)
		return
	}
	c.JSON(http.StatusOK, h.sessionState())
}

func (h *httpHandler) handlePauseSession(c *gin.Context) {
	h.timer.Pause()
	c.JSON(http.StatusOK, h.sessionState())
}

func (h *httpHandler) handleEndSession(c *gin.Context) {
	session, ended, err := h.timer.End(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, "failed to end session", err)
		return
	}
	if !ended {
		c.JSON(http.StatusOK, gin.H{"session": nil, "ended": false})
		return
	}
	h.publish(EventSessionsChanged, session.ID)
	c.JSON(http.StatusOK, gin.H{"session": session, "ended": true})
}

func (h *httpHandler) handleSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subjects": views.BuildSubjectList(h.notes.All())})
}

func (h *httpHandler) handleSearch(c *gin.Context) {
	results := views.Search(views.Corpus{
		Notes:    h.notes.All(),
		Plans:    h.plans.All(),
		Sessions: h.sessions.All(),
	}, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *httpHandler) handleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.preferences.Snapshot(c.Request.Context()))
}

func (h *httpHandler) handleUpdatePreferences(c *gin.Context) {
	var request preferencesPayload
	if !bindOptionalJSON(c, &request) {
		return
	}
	ctx := c.Request.Context()
	if request.Theme != nil {
		theme, ok := preferences.ParseTheme(*request.Theme)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_theme"})
			return
		}
		if err := h.preferences.SetTheme(ctx, theme); err != nil {
			h.respondServiceError(c, "failed to store theme", err)
			return
		}
	}
	if request.SidebarCollapsed != nil {
		if err := h.preferences.SetSidebarCollapsed(ctx, *request.SidebarCollapsed); err != nil {
			h.respondServiceError(c, "failed to store sidebar state", err)
			return
		}
	}
	snapshot := h.preferences.Snapshot(ctx)
	h.dispatcher.Publish(Event{Type: EventPreferencesChanged, Payload: snapshot})
	c.JSON(http.StatusOK, snapshot)
}

func (h *httpHandler) handleEvents(c *gin.Context) {
	ctx := c.Request.Context()
	stream, cleanup := h.dispatcher.Subscribe(ctx)
	defer cleanup()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent(eventHeartbeat, gin.H{"source": eventSourceBackend})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event := <-stream:
			c.SSEvent(event.Type, eventBody(event))
			return true
		case <-ticker.C:
			c.SSEvent(eventHeartbeat, gin.H{"source": eventSourceBackend})
			return true
		}
	})
}

func (h *httpHandler) sessionState() sessionStatePayload {
	state := sessionStatePayload{
		State:          h.timer.State().String(),
		ElapsedSeconds: h.timer.Elapsed(),
	}
	if active, ok := h.timer.Active(); ok {
		state.Session = &active
	}
	return state
}

func (h *httpHandler) publish(eventType string, ids ...string) {
	h.dispatcher.Publish(Event{Type: eventType, IDs: ids})
}

func (h *httpHandler) respondServiceError(c *gin.Context, message string, err error) {
	h.logger.Error(message, zap.Error(err))
	body := gin.H{"error": "storage_failed"}
	var serviceErr *storage.ServiceError
	if errors.As(err, &serviceErr) {
		body["code"] = serviceErr.Code()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// bindOptionalJSON decodes the request body when one is present. It writes a
// 400 response and reports false on malformed JSON.
func bindOptionalJSON(c *gin.Context, target any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(target); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return false
	}
	return true
}

func eventBody(event Event) gin.H {
	body := gin.H{
		"source":    eventSourceBackend,
		"timestamp": event.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if len(event.IDs) > 0 {
		body["ids"] = event.IDs
	}
	if event.Payload != nil {
		body["payload"] = event.Payload
	}
	return body
}

func nullableNote(note notes.Note, found bool) any {
	if !found {
		return nil
	}
	return note
}

func trimmedQuery(c *gin.Context, key string) string {
	return strings.TrimSpace(c.Query(key))
}
