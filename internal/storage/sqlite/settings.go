package sqlite

import (
	"context"
	"database/sql"

	"eyerest/internal/core/model"
)

// LoadSettings reads the single settings row.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT work_interval_minutes, break_duration_seconds, sound_enabled, sound_volume,
		       notification_enabled, overlay_enabled, launch_at_login, daily_goal,
		       idle_pause_minutes, theme,
		       onboarding_completed, onboarding_completed_at, tooltips_seen, first_break_completed
		FROM settings
		WHERE id = 1
	`
	var (
		settings    model.Settings
		completedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, query).Scan(
		&settings.WorkIntervalMinutes, &settings.BreakDurationSeconds, &settings.SoundEnabled, &settings.SoundVolume,
		&settings.NotificationEnabled, &settings.OverlayEnabled, &settings.LaunchAtLogin, &settings.DailyGoal,
		&settings.IdlePauseMinutes, &settings.Theme,
		&settings.OnboardingCompleted, &completedAt, &settings.TooltipsSeen, &settings.FirstBreakCompleted,
	)
	if err == sql.ErrNoRows {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, model.NewStorageError("load settings", err)
	}
	settings.OnboardingCompletedAt = int64Ptr(completedAt)
	return settings, nil
}

// SaveSettings overwrites the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		UPDATE settings SET
			work_interval_minutes = ?,
			break_duration_seconds = ?,
			sound_enabled = ?,
			sound_volume = ?,
			notification_enabled = ?,
			overlay_enabled = ?,
			launch_at_login = ?,
			daily_goal = ?,
			idle_pause_minutes = ?,
			theme = ?,
			onboarding_completed = ?,
			onboarding_completed_at = ?,
			tooltips_seen = ?,
			first_break_completed = ?
		WHERE id = 1
	`
	_, err := s.db.ExecContext(ctx, query,
		settings.WorkIntervalMinutes, settings.BreakDurationSeconds,
		boolToInt(settings.SoundEnabled), settings.SoundVolume,
		boolToInt(settings.NotificationEnabled), boolToInt(settings.OverlayEnabled),
		boolToInt(settings.LaunchAtLogin), settings.DailyGoal,
		settings.IdlePauseMinutes, settings.Theme,
		boolToInt(settings.OnboardingCompleted), nullInt64(settings.OnboardingCompletedAt),
		settings.TooltipsSeen, boolToInt(settings.FirstBreakCompleted),
	)
	return model.NewStorageError("save settings", err)
}
