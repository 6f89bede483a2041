// Package app assembles the storage substrate, repositories, timer and change
// dispatcher from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MarcoPoloResearchLab/studyhub/internal/clock"
	"github.com/MarcoPoloResearchLab/studyhub/internal/config"
	"github.com/MarcoPoloResearchLab/studyhub/internal/database"
	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
	"github.com/MarcoPoloResearchLab/studyhub/internal/preferences"
	"github.com/MarcoPoloResearchLab/studyhub/internal/schedule"
	"github.com/MarcoPoloResearchLab/studyhub/internal/server"
	"github.com/MarcoPoloResearchLab/studyhub/internal/sessions"
	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"go.uber.org/zap"
)

// Options overrides the runtime collaborators; zero values use the real ones.
type Options struct {
	Logger     *zap.Logger
	Clock      clock.Clock
	IDProvider clock.IDProvider
	Scheduler  schedule.Scheduler
	// Store replaces the configured substrate when set.
	Store storage.KeyValueStore
}

// App holds every long-lived component.
type App struct {
	Config      config.AppConfig
	Store       storage.KeyValueStore
	Notes       *notes.Repository
	Autosaver   *notes.Autosaver
	Plans       *plans.Repository
	Sessions    *sessions.Repository
	Timer       *sessions.Engine
	Preferences *preferences.Store
	Dispatcher  *server.Dispatcher

	logger     *zap.Logger
	closeStore func() error
}

// New opens the configured store and builds the components on top of it.
func New(ctx context.Context, cfg config.AppConfig, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := clock.OrSystem(opts.Clock)
	idProvider := opts.IDProvider
	if idProvider == nil {
		idProvider = clock.NewUUIDProvider()
	}

	store, closeStore := opts.Store, func() error { return nil }
	if store == nil {
		opened, closer, err := OpenStore(cfg, now, logger)
		if err != nil {
			return nil, err
		}
		store, closeStore = opened, closer
	}

	application, err := build(ctx, cfg, store, now, idProvider, opts.Scheduler, logger)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	application.closeStore = closeStore
	return application, nil
}

func build(ctx context.Context, cfg config.AppConfig, store storage.KeyValueStore, now clock.Clock, idProvider clock.IDProvider, scheduler schedule.Scheduler, logger *zap.Logger) (*App, error) {
	dispatcher := server.NewDispatcher()

	noteRepository, err := notes.NewRepository(ctx, notes.RepositoryConfig{
		Store:      store,
		Clock:      now,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	autosaver, err := notes.NewAutosaver(notes.AutosaverConfig{
		Repository: noteRepository,
		Scheduler:  scheduler,
		Delay:      cfg.AutosaveDelay,
		Logger:     logger,
		OnSaved: func(note notes.Note) {
			dispatcher.Publish(server.Event{Type: server.EventNotesChanged, IDs: []string{note.ID}})
		},
	})
	if err != nil {
		return nil, err
	}
	planRepository, err := plans.NewRepository(ctx, plans.RepositoryConfig{
		Store:      store,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	sessionRepository, err := sessions.NewRepository(ctx, sessions.RepositoryConfig{
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	timer, err := sessions.NewEngine(sessions.EngineConfig{
		Recorder:     sessionRepository,
		Clock:        now,
		IDProvider:   idProvider,
		Scheduler:    scheduler,
		TickInterval: cfg.TickInterval,
		OnTick: func(snapshot sessions.Snapshot) {
			dispatcher.Publish(server.Event{Type: server.EventSessionTick, Payload: snapshot})
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	preferenceStore, err := preferences.NewStore(preferences.Config{Store: store, Logger: logger})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		Store:       store,
		Notes:       noteRepository,
		Autosaver:   autosaver,
		Plans:       planRepository,
		Sessions:    sessionRepository,
		Timer:       timer,
		Preferences: preferenceStore,
		Dispatcher:  dispatcher,
		logger:      logger,
	}, nil
}

// OpenStore opens the substrate selected by cfg.StorageDriver. The returned
// closer releases it.
func OpenStore(cfg config.AppConfig, now clock.Clock, logger *zap.Logger) (storage.KeyValueStore, func() error, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), func() error { return nil }, nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.StoragePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store, err := storage.NewSQLiteStore(db, now)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil
	case config.DriverBadger:
		store, err := storage.OpenBadger(cfg.StoragePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("storage driver %q is not supported", cfg.StorageDriver)
	}
}

// Handler builds the HTTP API over the application's components.
func (a *App) Handler() (http.Handler, error) {
	return server.NewHTTPHandler(server.Dependencies{
		Notes:          a.Notes,
		Autosaver:      a.Autosaver,
		Plans:          a.Plans,
		Sessions:       a.Sessions,
		Timer:          a.Timer,
		Preferences:    a.Preferences,
		Dispatcher:     a.Dispatcher,
		AllowedOrigins: a.Config.AllowedOrigins,
		Logger:         a.logger,
	})
}

// Close commits any pending note draft, stops the timer display and releases
// the store. An open study session is not recorded.
func (a *App) Close(ctx context.Context) error {
	flushErr := a.Autosaver.Flush(ctx)
	a.Timer.Close()
	closeErr := a.closeStore()
	if active, ok := a.Timer.Active(); ok {
		a.logger.Warn("discarding open study session",
			zap.String("session_id", active.ID),
			zap.Int64("elapsed_seconds", active.ElapsedSeconds))
	}
	return errors.Join(flushErr, closeErr)
}
