package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
	"eyerest/internal/core/onboarding"
	"eyerest/internal/core/timekeeper"
)

// TimerState returns the current timer snapshot.
func (app *App) TimerState() model.TimerState {
	return app.timer.State()
}

// PauseTimer freezes the running phase.
func (app *App) PauseTimer(ctx context.Context) model.TimerState {
	return app.timer.Pause(ctx)
}

// ResumeTimer continues a paused phase where it stopped.
func (app *App) ResumeTimer(ctx context.Context) model.TimerState {
	return app.timer.Resume(ctx)
}

// SkipBreak ends the running break as skipped.
func (app *App) SkipBreak(ctx context.Context) model.TimerState {
	return app.timer.SkipBreak(ctx)
}

// ResetTimer starts a fresh work phase.
func (app *App) ResetTimer(ctx context.Context) model.TimerState {
	return app.timer.Reset(ctx)
}

// Settings returns the current user settings.
func (app *App) Settings() model.Settings {
	return app.settings.Get()
}

// UpdateSettings validates and persists the user preferences. Onboarding
// fields are owned by the onboarding commands and are kept as stored.
// Interval changes apply from the next phase boundary.
func (app *App) UpdateSettings(ctx context.Context, requested model.Settings) (model.Settings, error) {
	if err := requested.Validate(); err != nil {
		return model.Settings{}, err
	}
	var launchChanged bool
	updated, err := app.updateSettings(ctx, func(next *model.Settings) error {
		launchChanged = next.LaunchAtLogin != requested.LaunchAtLogin
		requested.OnboardingCompleted = next.OnboardingCompleted
		requested.OnboardingCompletedAt = next.OnboardingCompletedAt
		requested.TooltipsSeen = next.TooltipsSeen
		requested.FirstBreakCompleted = next.FirstBreakCompleted
		*next = requested
		return nil
	})
	if err != nil {
		return model.Settings{}, err
	}

	log.Info().Int("work_interval_minutes", updated.WorkIntervalMinutes).Int("daily_goal", updated.DailyGoal).Msg("Settings updated")
	if launchChanged {
		app.applyLoginItem(updated.LaunchAtLogin)
	}
	app.timer.Publish(timekeeper.EventSettingsChanged, updated)
	return updated, nil
}

// applyLoginItem registers or removes the login item. Failure leaves the
// stored preference in place.
func (app *App) applyLoginItem(enabled bool) {
	if app.loginItem == nil {
		return
	}
	if err := app.loginItem.Apply(enabled); err != nil {
		log.Error().Err(err).Bool("enabled", enabled).Msg("Failed to update launch at login")
	}
}

// AnalyticsSummary builds the dashboard against the current daily goal.
func (app *App) AnalyticsSummary(ctx context.Context) (model.AnalyticsSummary, error) {
	return app.analytics.BuildSummary(ctx, app.settings.Get().DailyGoal)
}

// DailyStatsRange returns zero-filled daily stats for two YYYY-MM-DD keys.
func (app *App) DailyStatsRange(ctx context.Context, from, to string) ([]model.DailyStats, error) {
	return app.analytics.GetDailyStatsRange(ctx, from, to)
}

// BreakHistory pages through break records, newest first. A zero limit
// means the default page size.
func (app *App) BreakHistory(ctx context.Context, limit, offset int) ([]model.BreakRecord, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit < 1 || limit > maxHistoryLimit {
		return nil, &model.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", maxHistoryLimit)}
	}
	if offset < 0 {
		return nil, &model.ValidationError{Field: "offset", Reason: "must not be negative"}
	}
	return app.store.QueryRecordsPage(ctx, limit, offset)
}

// ClearAllData wipes records, the cache and the settings row, then resets
// the in-memory settings and today's counter.
func (app *App) ClearAllData(ctx context.Context) error {
	app.settingsMu.Lock()
	if err := app.store.ClearAll(ctx); err != nil {
		app.settingsMu.Unlock()
		return err
	}
	app.settings.Reset()
	app.settingsMu.Unlock()

	app.timer.DiscardHistory()
	log.Warn().Msg("All data cleared")
	app.timer.Publish(timekeeper.EventDataCleared, nil)
	return nil
}

// OnboardingState derives the onboarding view from the stored settings.
func (app *App) OnboardingState() model.OnboardingState {
	return onboarding.BuildState(app.settings.Get(), app.now(), app.loc)
}

// CompleteOnboarding persists completion and starts the timer.
func (app *App) CompleteOnboarding(ctx context.Context) (model.OnboardingState, error) {
	updated, err := app.updateSettings(ctx, func(next *model.Settings) error {
		onboarding.Complete(next, app.now())
		return nil
	})
	if err != nil {
		return model.OnboardingState{}, err
	}

	app.timer.Resume(ctx)
	state := onboarding.BuildState(updated, app.now(), app.loc)
	log.Info().Msg("Onboarding completed")
	app.timer.Publish(timekeeper.EventOnboardingCompleted, state)
	return state, nil
}

// MarkTooltipSeen records a dismissed tooltip and returns all seen ids.
func (app *App) MarkTooltipSeen(ctx context.Context, id string) ([]string, error) {
	var seen []string
	_, err := app.updateSettings(ctx, func(next *model.Settings) error {
		var err error
		seen, err = onboarding.MarkTooltipSeen(next, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return seen, nil
}

// ResetOnboarding clears onboarding progress and pauses the timer.
func (app *App) ResetOnboarding(ctx context.Context) (model.OnboardingState, error) {
	updated, err := app.updateSettings(ctx, func(next *model.Settings) error {
		onboarding.Reset(next)
		return nil
	})
	if err != nil {
		return model.OnboardingState{}, err
	}

	app.timer.Pause(ctx)
	log.Info().Msg("Onboarding reset")
	return onboarding.BuildState(updated, app.now(), app.loc), nil
}

// TriggerDemoBreak starts the short preview break before onboarding completes.
func (app *App) TriggerDemoBreak(ctx context.Context) (model.TimerState, bool) {
	return app.timer.TriggerDemoBreak(ctx)
}
