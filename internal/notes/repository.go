package notes

import (
	"context"
	"errors"

	"github.com/MarcoPoloResearchLab/studyhub/internal/clock"
	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"go.uber.org/zap"
)

var (
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

const (
	opRepositoryNew = "notes.repository.new"
	opCreate        = "notes.create"
	opUpdate        = "notes.update"
	opDelete        = "notes.delete"
)

// RepositoryConfig describes the dependencies of a note Repository.
type RepositoryConfig struct {
	Store      storage.KeyValueStore
	Clock      clock.Clock
	IDProvider clock.IDProvider
	Logger     *zap.Logger
}

// Repository owns the note collection and persists it on every mutation.
type Repository struct {
	collection *storage.Collection[Note]
	clock      clock.Clock
	idProvider clock.IDProvider
	logger     *zap.Logger
}

// NewRepository loads the persisted notes, falling back to the legacy key.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if cfg.IDProvider == nil {
		return nil, storage.NewServiceError(opRepositoryNew, "missing_id_provider", errMissingIDProvider)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	collection, err := storage.OpenCollection[Note](ctx, storage.CollectionConfig{
		Store:  cfg.Store,
		Keys:   storage.NotesKeys,
		Logger: logger,
	})
	if err != nil {
		return nil, storage.NewServiceError(opRepositoryNew, "missing_store", err)
	}

	return &Repository{
		collection: collection,
		clock:      clock.OrSystem(cfg.Clock),
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// Create stores a new note at the front of the collection.
func (r *Repository) Create(ctx context.Context, input NoteInput) (Note, error) {
	id, err := r.idProvider.NewID()
	if err != nil {
		r.logError(opCreate, "id_generation_failed", err)
		return Note{}, storage.NewServiceError(opCreate, "id_generation_failed", err)
	}

	now := clock.FormatISO(r.clock())
	note := Note{
		ID:        id,
		Title:     normalizeTitle(input.Title),
		Subject:   normalizeSubject(input.Subject),
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.collection.Prepend(ctx, note); err != nil {
		r.logError(opCreate, "persist_failed", err, zap.String("note_id", id))
		return Note{}, storage.NewServiceError(opCreate, "persist_failed", err)
	}
	return note, nil
}

// Update applies the provided fields and refreshes updatedAt. Unknown ids and
// empty updates are no-ops reported with found=false and changed=false
// respectively.
func (r *Repository) Update(ctx context.Context, id string, update NoteUpdate) (Note, bool, error) {
	if update.IsEmpty() {
		note, found := r.collection.Find(id)
		return note, found, nil
	}

	updatedAt := clock.FormatISO(r.clock())
	note, found, err := r.collection.Update(ctx, id, func(note *Note) {
		update.applyTo(note)
		note.UpdatedAt = updatedAt
	})
	if err != nil {
		r.logError(opUpdate, "persist_failed", err, zap.String("note_id", id))
		return Note{}, found, storage.NewServiceError(opUpdate, "persist_failed", err)
	}
	return note, found, nil
}

// Delete removes the note. Unknown ids are a no-op reported as false.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := r.collection.Remove(ctx, id)
	if err != nil {
		r.logError(opDelete, "persist_failed", err, zap.String("note_id", id))
		return false, storage.NewServiceError(opDelete, "persist_failed", err)
	}
	return removed, nil
}

// FindByID returns the note with the given id.
func (r *Repository) FindByID(id string) (Note, bool) {
	return r.collection.Find(id)
}

// All returns every note in insertion order.
func (r *Repository) All() []Note {
	return r.collection.All()
}

func (r *Repository) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	r.logger.Error("notes repository error", attrs...)
}
