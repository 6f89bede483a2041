package sessions

import (
	"context"
	"errors"

	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"go.uber.org/zap"
)

const (
	opRepositoryNew = "sessions.repository.new"
	opRecord        = "sessions.record"
)

var errMissingSessionID = errors.New("session id is required")

// RepositoryConfig describes the dependencies of a session Repository.
type RepositoryConfig struct {
	Store  storage.KeyValueStore
	Logger *zap.Logger
}

// Repository stores finalized sessions. Sessions are append-only.
type Repository struct {
	collection *storage.Collection[StudySession]
	logger     *zap.Logger
}

// NewRepository loads the persisted sessions, falling back to the legacy key.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collection, err := storage.OpenCollection[StudySession](ctx, storage.CollectionConfig{
		Store:  cfg.Store,
		Keys:   storage.SessionsKeys,
		Logger: logger,
	})
	if err != nil {
		return nil, storage.NewServiceError(opRepositoryNew, "missing_store", err)
	}
	return &Repository{collection: collection, logger: logger}, nil
}

// Record stores a finalized session at the front of the collection.
func (r *Repository) Record(ctx context.Context, session StudySession) error {
	if session.ID == "" {
		return storage.NewServiceError(opRecord, "missing_id", errMissingSessionID)
	}
	session.Subject = NormalizeSubject(session.Subject)
	if session.DurationInSeconds < 0 {
		session.DurationInSeconds = 0
	}
	if err := r.collection.Prepend(ctx, session); err != nil {
		r.logger.Error("sessions repository error",
			zap.String("operation", opRecord),
			zap.String("reason", "persist_failed"),
			zap.String("session_id", session.ID),
			zap.Error(err))
		return storage.NewServiceError(opRecord, "persist_failed", err)
	}
	return nil
}

// FindByID returns the session with the given id.
func (r *Repository) FindByID(id string) (StudySession, bool) {
	return r.collection.Find(id)
}

// All returns every session in insertion order.
func (r *Repository) All() []StudySession {
	return r.collection.All()
}
