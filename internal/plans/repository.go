package plans

import (
	"context"
	"errors"

	"github.com/MarcoPoloResearchLab/studyhub/internal/clock"
	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"go.uber.org/zap"
)

var errMissingIDProvider = errors.New("id provider is required")

const (
	opRepositoryNew = "plans.repository.new"
	opSave          = "plans.save"
	opComplete      = "plans.complete"
	opDelete        = "plans.delete"
)

// RepositoryConfig describes the dependencies of a plan Repository.
type RepositoryConfig struct {
	Store      storage.KeyValueStore
	IDProvider clock.IDProvider
	Logger     *zap.Logger
}

// Repository owns the plan collection.
type Repository struct {
	collection *storage.Collection[Plan]
	idProvider clock.IDProvider
	logger     *zap.Logger
}

// NewRepository loads the persisted plans, falling back to the legacy key.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if cfg.IDProvider == nil {
		return nil, storage.NewServiceError(opRepositoryNew, "missing_id_provider", errMissingIDProvider)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collection, err := storage.OpenCollection[Plan](ctx, storage.CollectionConfig{
		Store:  cfg.Store,
		Keys:   storage.PlansKeys,
		Logger: logger,
	})
	if err != nil {
		return nil, storage.NewServiceError(opRepositoryNew, "missing_store", err)
	}
	return &Repository{collection: collection, idProvider: cfg.IDProvider, logger: logger}, nil
}

// Save creates or updates a plan. A known ID is updated in place; an empty ID
// gets a fresh identifier; an unknown ID is created under that identifier.
func (r *Repository) Save(ctx context.Context, input PlanInput) (Plan, error) {
	if input.ID != "" {
		updated, found, err := r.collection.Update(ctx, input.ID, func(plan *Plan) {
			*plan = input.toPlan(plan.ID, plan.Completed)
		})
		if err != nil {
			r.logError(opSave, "persist_failed", err, zap.String("plan_id", input.ID))
			return Plan{}, storage.NewServiceError(opSave, "persist_failed", err)
		}
		if found {
			return updated, nil
		}
	}

	id := input.ID
	if id == "" {
		generated, err := r.idProvider.NewID()
		if err != nil {
			r.logError(opSave, "id_generation_failed", err)
			return Plan{}, storage.NewServiceError(opSave, "id_generation_failed", err)
		}
		id = generated
	}

	plan := input.toPlan(id, false)
	if err := r.collection.Prepend(ctx, plan); err != nil {
		r.logError(opSave, "persist_failed", err, zap.String("plan_id", id))
		return Plan{}, storage.NewServiceError(opSave, "persist_failed", err)
	}
	return plan, nil
}

// SetCompleted marks the plan done or not done. Unknown ids are a no-op
// reported as false.
func (r *Repository) SetCompleted(ctx context.Context, id string, completed bool) (Plan, bool, error) {
	plan, found, err := r.collection.Update(ctx, id, func(plan *Plan) {
		plan.Completed = completed
	})
	if err != nil {
		r.logError(opComplete, "persist_failed", err, zap.String("plan_id", id))
		return Plan{}, found, storage.NewServiceError(opComplete, "persist_failed", err)
	}
	return plan, found, nil
}

// Delete removes the plan. Unknown ids are a no-op reported as false.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := r.collection.Remove(ctx, id)
	if err != nil {
		r.logError(opDelete, "persist_failed", err, zap.String("plan_id", id))
		return false, storage.NewServiceError(opDelete, "persist_failed", err)
	}
	return removed, nil
}

// FindByID returns the plan with the given id.
func (r *Repository) FindByID(id string) (Plan, bool) {
	return r.collection.Find(id)
}

// All returns every plan in insertion order.
func (r *Repository) All() []Plan {
	return r.collection.All()
}

func (r *Repository) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}
	attrs = append(attrs, fields...)
	r.logger.Error("plans repository error", attrs...)
}
