package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/studyhub/internal/clock"
	"github.com/MarcoPoloResearchLab/studyhub/internal/schedule"
	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"go.uber.org/zap"
)

// DefaultTickInterval is the display refresh period of a running session.
const DefaultTickInterval = 300 * time.Millisecond

const (
	opEngineNew = "sessions.engine.new"
	opStart     = "sessions.start"
	opEnd       = "sessions.end"
)

var (
	errMissingRecorder   = errors.New("session recorder is required")
	errMissingIDProvider = errors.New("id provider is required")
)

// State is the timer state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Recorder persists finalized sessions.
type Recorder interface {
	Record(ctx context.Context, session StudySession) error
}

// Snapshot is what a display tick reports.
type Snapshot struct {
	Subject        string `json:"subject"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
	State          string `json:"state"`
}

// EngineConfig describes the dependencies of an Engine.
type EngineConfig struct {
	Recorder     Recorder
	Clock        clock.Clock
	IDProvider   clock.IDProvider
	Scheduler    schedule.Scheduler
	TickInterval time.Duration
	// OnTick, when set, is called every TickInterval while a session runs.
	OnTick func(Snapshot)
	Logger *zap.Logger
}

type activeState struct {
	id            string
	subject       string
	startedAt     time.Time
	intervalStart time.Time
	accumulated   int64
	running       bool
}

// Engine times one study session at a time. Elapsed time accumulates across
// running intervals; each interval contributes its whole seconds when it is
// folded in by Pause.
type Engine struct {
	mu         sync.Mutex
	recorder   Recorder
	clock      clock.Clock
	idProvider clock.IDProvider
	onTick     func(Snapshot)
	logger     *zap.Logger
	ticker     *schedule.Repeater
	active     *activeState
}

// NewEngine validates the configuration and returns an idle Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Recorder == nil {
		return nil, storage.NewServiceError(opEngineNew, "missing_recorder", errMissingRecorder)
	}
	if cfg.IDProvider == nil {
		return nil, storage.NewServiceError(opEngineNew, "missing_id_provider", errMissingIDProvider)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	engine := &Engine{
		recorder:   cfg.Recorder,
		clock:      clock.OrSystem(cfg.Clock),
		idProvider: cfg.IDProvider,
		onTick:     cfg.OnTick,
		logger:     logger,
	}
	engine.ticker = schedule.NewRepeater(cfg.Scheduler, interval, engine.tick)
	return engine, nil
}

// Start begins a new session when idle or resumes a paused one. Starting a
// running session changes nothing. The subject is only used for new sessions.
func (e *Engine) Start(subject string) (ActiveSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	switch {
	case e.active == nil:
		id, err := e.idProvider.NewID()
		if err != nil {
			e.logger.Error("session engine error",
				zap.String("operation", opStart),
				zap.String("reason", "id_generation_failed"),
				zap.Error(err))
			return ActiveSession{}, storage.NewServiceError(opStart, "id_generation_failed", err)
		}
		e.active = &activeState{
			id:            id,
			subject:       NormalizeSubject(subject),
			startedAt:     now,
			intervalStart: now,
			running:       true,
		}
	case !e.active.running:
		e.active.intervalStart = now
		e.active.running = true
	default:
		return e.viewLocked(now), nil
	}

	e.ticker.Start()
	return e.viewLocked(now), nil
}

// Pause folds the current interval into the accumulated total. It reports
// false when no session is running.
func (e *Engine) Pause() (ActiveSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil || !e.active.running {
		return ActiveSession{}, false
	}
	now := e.clock()
	e.active.accumulated = e.elapsedLocked(now)
	e.active.running = false
	e.active.intervalStart = time.Time{}
	e.ticker.Stop()
	return e.viewLocked(now), true
}

// End finalizes the session and hands it to the recorder. It reports false
// when idle. When recording fails the session stays open so it can be ended
// again.
func (e *Engine) End(ctx context.Context) (StudySession, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return StudySession{}, false, nil
	}

	now := e.clock()
	session := StudySession{
		ID:                e.active.id,
		Subject:           e.active.subject,
		StartTime:         clock.FormatISO(e.active.startedAt),
		EndTime:           clock.FormatISO(now),
		DurationInSeconds: e.elapsedLocked(now),
	}
	if err := e.recorder.Record(ctx, session); err != nil {
		e.logger.Error("session engine error",
			zap.String("operation", opEnd),
			zap.String("reason", "record_failed"),
			zap.String("session_id", session.ID),
			zap.Error(err))
		return StudySession{}, true, storage.NewServiceError(opEnd, "record_failed", err)
	}

	e.ticker.Stop()
	e.active = nil
	return session, true, nil
}

// Elapsed returns the accumulated seconds, including the running interval.
// It never changes state.
func (e *Engine) Elapsed() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedLocked(e.clock())
}

// Active returns the open session, if any.
func (e *Engine) Active() (ActiveSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ActiveSession{}, false
	}
	return e.viewLocked(e.clock()), true
}

// State reports the timer state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Snapshot reports the current display values.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.clock())
}

// Close stops the display tick without ending the session.
func (e *Engine) Close() {
	e.ticker.Stop()
}

func (e *Engine) tick() {
	if e.onTick == nil {
		return
	}
	e.mu.Lock()
	snapshot := e.snapshotLocked(e.clock())
	e.mu.Unlock()
	e.onTick(snapshot)
}

func (e *Engine) stateLocked() State {
	switch {
	case e.active == nil:
		return StateIdle
	case e.active.running:
		return StateRunning
	default:
		return StatePaused
	}
}

func (e *Engine) elapsedLocked(now time.Time) int64 {
	if e.active == nil {
		return 0
	}
	if !e.active.running {
		return e.active.accumulated
	}
	interval := now.Sub(e.active.intervalStart).Milliseconds() / 1000
	if interval < 0 {
		interval = 0
	}
	return e.active.accumulated + interval
}

func (e *Engine) snapshotLocked(now time.Time) Snapshot {
	snapshot := Snapshot{State: e.stateLocked().String()}
	if e.active != nil {
		snapshot.Subject = e.active.subject
		snapshot.ElapsedSeconds = e.elapsedLocked(now)
	}
	return snapshot
}

func (e *Engine) viewLocked(now time.Time) ActiveSession {
	view := ActiveSession{
		ID:             e.active.id,
		Subject:        e.active.subject,
		StartedAt:      clock.FormatISO(e.active.startedAt),
		ElapsedSeconds: e.elapsedLocked(now),
		IsRunning:      e.active.running,
	}
	if e.active.running {
		view.StartTime = clock.FormatISO(e.active.intervalStart)
	}
	return view
}
