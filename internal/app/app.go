// Package app wires the store and its services from a Config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conorfennell/knoldeck/internal/clock"
	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/exchange"
	"github.com/conorfennell/knoldeck/internal/fsrs"
	"github.com/conorfennell/knoldeck/internal/hierarchy"
	"github.com/conorfennell/knoldeck/internal/repetition"
	"github.com/conorfennell/knoldeck/internal/sequencer"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/storage/migrations"
	"github.com/conorfennell/knoldeck/internal/sync"
	"github.com/conorfennell/knoldeck/internal/web"
)

// App is the application layer between the entry points and the store. It owns the
// database handle; the caller must call Close when done.
type App struct {
	DB        *storage.DB
	Files     *hierarchy.SQLStore
	Cells     *sequencer.SQLSequencer
	Units     *repetition.SQLLifecycle
	Exchange  *exchange.Service
	Sync      *sync.Syncer
	Scheduler *fsrs.Scheduler
	Clock     clock.Clock
}

// Open opens the database named by cfg, migrates it and builds the services on top.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	return open(ctx, cfg, clock.Real{})
}

func open(ctx context.Context, cfg *config.Config, c clock.Clock) (*App, error) {
	db, err := storage.Open(ctx, cfg.Database.Path, cfg.Database.BusyTimeout())
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db.Conn()); err != nil {
		db.Close()
		return nil, err
	}

	units := repetition.NewSQLLifecycle(db, c)
	cells := sequencer.NewSQLSequencer(db, units)
	a := &App{
		DB:        db,
		Files:     hierarchy.NewSQLStore(db),
		Cells:     cells,
		Units:     units,
		Exchange:  exchange.NewService(db, cells),
		Sync:      sync.NewSyncer(db, cells, c, cfg.Sync.ReposDir),
		Scheduler: fsrs.NewScheduler(nil),
		Clock:     c,
	}
	slog.Debug("opened store", "path", cfg.Database.Path)
	return a, nil
}

// Reconfigure opens the store named by cfg and returns a fresh App on it, sharing a's
// clock. a stays open; the caller decides when to close it.
func (a *App) Reconfigure(ctx context.Context, cfg *config.Config) (*App, error) {
	return open(ctx, cfg, a.Clock)
}

// Close closes the database.
func (a *App) Close() error {
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", a.DB.Path(), err)
	}
	return nil
}

// Deps returns the services for the HTTP server.
func (a *App) Deps(settings web.SettingsManager) web.Deps {
	return web.Deps{
		Files:     a.Files,
		Cells:     a.Cells,
		Units:     a.Units,
		Exchange:  a.Exchange,
		Settings:  settings,
		Scheduler: a.Scheduler,
		Clock:     a.Clock,
	}
}
