package notes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/studyhub/internal/schedule"
	"go.uber.org/zap"
)

// DefaultAutosaveDelay is the quiet period after the last keystroke before a
// draft is committed.
const DefaultAutosaveDelay = time.Second

const opAutosave = "notes.autosave"

var errMissingRepository = errors.New("note repository is required")

// AutosaverConfig describes the dependencies of an Autosaver.
type AutosaverConfig struct {
	Repository *Repository
	Scheduler  schedule.Scheduler
	Delay      time.Duration
	Logger     *zap.Logger
	// OnSaved, when set, receives every note committed by the autosaver.
	OnSaved func(Note)
}

type draft struct {
	id     string
	update NoteUpdate
}

// Autosaver buffers edits to the note being typed into and commits them after
// a quiet period. Switching to a different note commits the previous draft
// first.
type Autosaver struct {
	mu         sync.Mutex
	repository *Repository
	debouncer  *schedule.Debouncer
	logger     *zap.Logger
	onSaved    func(Note)
	draft      *draft
}

// NewAutosaver validates the configuration and returns an Autosaver.
func NewAutosaver(cfg AutosaverConfig) (*Autosaver, error) {
	if cfg.Repository == nil {
		return nil, errMissingRepository
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Autosaver{
		repository: cfg.Repository,
		debouncer:  schedule.NewDebouncer(cfg.Scheduler, delay),
		logger:     logger,
		onSaved:    cfg.OnSaved,
	}, nil
}

// Edit records a partial edit of the note with the given id and restarts the
// quiet period. A pending draft for another note is committed before the new
// draft is started; its error, if any, is returned.
func (a *Autosaver) Edit(ctx context.Context, id string, update NoteUpdate) error {
	a.mu.Lock()
	var previous *draft
	if a.draft != nil && a.draft.id != id {
		previous = a.draft
		a.draft = nil
	}
	if a.draft == nil {
		a.draft = &draft{id: id}
	}
	a.draft.update = a.draft.update.Merge(update)
	a.debouncer.Trigger(a.fire)
	a.mu.Unlock()

	if previous != nil {
		return a.commit(ctx, *previous)
	}
	return nil
}

// Flush commits the pending draft immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.debouncer.Cancel()
	pending := a.take()
	if pending == nil {
		return nil
	}
	return a.commit(ctx, *pending)
}

// Discard drops the pending draft without saving it. It reports whether a
// draft was pending.
func (a *Autosaver) Discard() bool {
	a.debouncer.Cancel()
	return a.take() != nil
}

// PendingID returns the id of the note with an uncommitted draft.
func (a *Autosaver) PendingID() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.draft == nil {
		return "", false
	}
	return a.draft.id, true
}

// Preview returns the stored note with the pending draft applied, without
// persisting anything.
func (a *Autosaver) Preview(id string) (Note, bool) {
	note, found := a.repository.FindByID(id)
	if !found {
		return Note{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.draft != nil && a.draft.id == id {
		a.draft.update.applyTo(&note)
	}
	return note, true
}

func (a *Autosaver) fire() {
	pending := a.take()
	if pending == nil {
		return
	}
	_ = a.commit(context.Background(), *pending)
}

func (a *Autosaver) take() *draft {
	a.mu.Lock()
	defer a.mu.Unlock()
	pending := a.draft
	a.draft = nil
	return pending
}

func (a *Autosaver) commit(ctx context.Context, pending draft) error {
	note, found, err := a.repository.Update(ctx, pending.id, pending.update)
	if err != nil {
		a.logger.Error("notes autosave error",
			zap.String("operation", opAutosave),
			zap.String("reason", "commit_failed"),
			zap.String("note_id", pending.id),
			zap.Error(err))
		return err
	}
	if !found {
		a.logger.Debug("autosave target no longer exists", zap.String("note_id", pending.id))
		return nil
	}
	if a.onSaved != nil {
		a.onSaved(note)
	}
	return nil
}
