package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dori/doable/internal/config"
	"github.com/dori/doable/internal/db"
	"github.com/dori/doable/internal/logging"
	"github.com/dori/doable/internal/notify"
	"github.com/dori/doable/internal/persist"
	"github.com/dori/doable/internal/store"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	DB       *db.DB // nil for ephemeral runs
	Store    *store.Store
	Notifier *notify.Notifier
	Log      *logging.Logger
	lockFile *flock.Flock
}

// Options controls how New wires the application
type Options struct {
	// Ephemeral keeps tasks in memory only. No lock is taken and nothing is written to disk.
	Ephemeral bool
	// Stderr mirrors warnings to stderr, for CLI subcommands
	Stderr bool
}

// New creates a new application instance
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	app := &App{
		Config:   cfg,
		Notifier: notify.NewNotifier(cfg.Notifications),
	}

	if opts.Ephemeral {
		log, err := logging.New(logging.Options{Stderr: opts.Stderr})
		if err != nil {
			return nil, err
		}
		app.Log = log
		app.Store = app.newStore(persist.NewMemoryKV())
		return app, nil
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	log, err := logging.New(logging.Options{
		Debug:   cfg.Debug,
		DataDir: cfg.DataDir,
		Stderr:  opts.Stderr,
	})
	if err != nil {
		return nil, err
	}
	app.Log = log

	// The whole collection is rewritten on every save, so two writers would
	// overwrite each other
	if err := app.acquireLock(); err != nil {
		app.Log.Close()
		return nil, err
	}

	database, err := db.Open(context.Background(), cfg.DBPath)
	if err != nil {
		app.releaseLock()
		app.Log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database
	app.Log.Debug("opened database", "path", cfg.DBPath)

	app.Store = app.newStore(database)
	app.Log.Debug("loaded tasks", "count", app.Store.Stats().Total)

	return app, nil
}

func (a *App) newStore(kv persist.KV) *store.Store {
	return store.New(
		persist.New(kv, a.Log.Logger),
		store.WithLogger(a.Log.Logger),
		store.WithSettings(a.Config.ViewSettings()),
		store.WithLocale(a.Config.Language()),
	)
}

// LastSaved returns when the collection was last written, if ever
func (a *App) LastSaved() (time.Time, bool, error) {
	if a.DB == nil {
		return time.Time{}, false, nil
	}
	return a.DB.UpdatedAt(persist.Key)
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of doable is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.Log != nil {
		if err := a.Log.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
