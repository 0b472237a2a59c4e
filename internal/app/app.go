// Package app wires the store, settings, timer and analytics into one
// application context and exposes the command surface.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"eyerest/internal/core/analytics"
	"eyerest/internal/core/model"
	"eyerest/internal/core/timekeeper"
	"eyerest/internal/settings"
	"eyerest/internal/storage/sqlite"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Config contains the options needed to build an App.
type Config struct {
	DatabasePath   string
	Location       *time.Location
	IdleCheckTicks int
	IdleSource     timekeeper.IdleSource
	LoginItem      LoginItem
	Now            func() time.Time
}

// LoginItem registers the application to start with the user session.
type LoginItem interface {
	Apply(enabled bool) error
}

// App is the shared application context. Timer state and settings each
// have their own lock; the store has a third.
type App struct {
	store     *sqlite.Store
	settings  *settings.Holder
	analytics *analytics.Engine
	timer     *timekeeper.TimeKeeper
	events    <-chan timekeeper.Event
	loginItem LoginItem
	loc       *time.Location
	now       func() time.Time

	// settingsMu serializes read-modify-persist cycles of the settings row.
	settingsMu sync.Mutex
}

// New opens the database, loads settings and hydrates the timer. A
// migration failure is returned and is fatal to the caller.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	store, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.DatabasePath, Now: cfg.Now})
	if err != nil {
		return nil, err
	}

	current, err := store.LoadSettings(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load settings: %w", err)
	}
	holder := settings.NewHolder(current)

	engine := analytics.New(store, analytics.Config{Location: cfg.Location, Now: cfg.Now})
	timer := timekeeper.New(holder, store, engine, timekeeper.Config{
		Now:            cfg.Now,
		IdleCheckTicks: cfg.IdleCheckTicks,
	})
	if cfg.IdleSource != nil {
		timer.SetIdleSource(cfg.IdleSource)
	}

	application := &App{
		store:     store,
		settings:  holder,
		analytics: engine,
		timer:     timer,
		events:    timer.Subscribe(16),
		loginItem: cfg.LoginItem,
		loc:       cfg.Location,
		now:       cfg.Now,
	}

	completedToday, err := application.countCompletedToday(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	state := timer.SetBreaksCompletedToday(completedToday)

	log.Info().
		Str("phase", string(state.Phase)).
		Int("breaks_completed_today", completedToday).
		Bool("onboarding_completed", current.OnboardingCompleted).
		Msg("Application ready")
	return application, nil
}

// Timer returns the state machine driven by the scheduler.
func (app *App) Timer() *timekeeper.TimeKeeper {
	return app.timer
}

// Analytics returns the rollup engine.
func (app *App) Analytics() *analytics.Engine {
	return app.analytics
}

// Run tracks the first completed break after onboarding until ctx is done.
func (app *App) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-app.events:
			if !ok {
				return nil
			}
			if event.Type == timekeeper.EventBreakComplete {
				app.markFirstBreak(ctx)
			}
		}
	}
}

// Close closes event subscribers and the database.
func (app *App) Close() error {
	app.timer.Close()
	return app.store.Close()
}

func (app *App) countCompletedToday(ctx context.Context) (int, error) {
	startMs, endMs := model.DayBounds(model.Midnight(app.now(), app.loc))
	count, err := app.store.CountCompletedInRange(ctx, startMs, endMs)
	if err != nil {
		return 0, fmt.Errorf("hydrate breaks completed today: %w", err)
	}
	return count, nil
}

func (app *App) markFirstBreak(ctx context.Context) {
	current := app.settings.Get()
	if !current.OnboardingCompleted || current.FirstBreakCompleted {
		return
	}
	_, err := app.updateSettings(ctx, func(next *model.Settings) error {
		next.FirstBreakCompleted = true
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("op", "mark_first_break").Msg("Failed to persist first break")
	}
}

// updateSettings applies mutate to a copy, persists it and only then swaps
// the in-memory settings.
func (app *App) updateSettings(ctx context.Context, mutate func(*model.Settings) error) (model.Settings, error) {
	app.settingsMu.Lock()
	defer app.settingsMu.Unlock()

	next := app.settings.Get()
	if err := mutate(&next); err != nil {
		return model.Settings{}, err
	}
	if err := app.store.SaveSettings(ctx, next); err != nil {
		return model.Settings{}, err
	}
	app.settings.Set(next)
	return next, nil
}
