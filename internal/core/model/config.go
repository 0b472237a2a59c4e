package model

import "time"

const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Settings holds the user preferences persisted in the settings row.
type Settings struct {
	WorkIntervalMinutes   int     `json:"work_interval_minutes"`
	BreakDurationSeconds  int     `json:"break_duration_seconds"`
	SoundEnabled          bool    `json:"sound_enabled"`
	SoundVolume           float64 `json:"sound_volume"`
	NotificationEnabled   bool    `json:"notification_enabled"`
	OverlayEnabled        bool    `json:"overlay_enabled"`
	LaunchAtLogin         bool    `json:"launch_at_login"`
	DailyGoal             int     `json:"daily_goal"`
	IdlePauseMinutes      int     `json:"idle_pause_minutes"`
	Theme                 string  `json:"theme"`
	OnboardingCompleted   bool    `json:"onboarding_completed"`
	OnboardingCompletedAt *int64  `json:"onboarding_completed_at"`
	TooltipsSeen          string  `json:"tooltips_seen"`
	FirstBreakCompleted   bool    `json:"first_break_completed"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		WorkIntervalMinutes:  20,
		BreakDurationSeconds: 20,
		SoundEnabled:         true,
		SoundVolume:          0.7,
		NotificationEnabled:  true,
		OverlayEnabled:       true,
		LaunchAtLogin:        false,
		DailyGoal:            24,
		IdlePauseMinutes:     5,
		Theme:                ThemeSystem,
		TooltipsSeen:         "[]",
	}
}

// Validate rejects settings outside their allowed bounds.
func (settings Settings) Validate() error {
	switch {
	case settings.WorkIntervalMinutes < 1 || settings.WorkIntervalMinutes > 120:
		return &ConfigurationError{Field: "work_interval_minutes", Reason: "must be between 1 and 120"}
	case settings.BreakDurationSeconds < 5 || settings.BreakDurationSeconds > 300:
		return &ConfigurationError{Field: "break_duration_seconds", Reason: "must be between 5 and 300"}
	case settings.SoundVolume < 0 || settings.SoundVolume > 1:
		return &ConfigurationError{Field: "sound_volume", Reason: "must be between 0.0 and 1.0"}
	case settings.DailyGoal < 1 || settings.DailyGoal > 100:
		return &ConfigurationError{Field: "daily_goal", Reason: "must be between 1 and 100"}
	case settings.IdlePauseMinutes < 0 || settings.IdlePauseMinutes > 120:
		return &ConfigurationError{Field: "idle_pause_minutes", Reason: "must be between 0 and 120"}
	}
	switch settings.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return &ConfigurationError{Field: "theme", Reason: "must be 'system', 'light', or 'dark'"}
	}
	return nil
}

// WorkInterval returns the configured work phase length.
func (settings Settings) WorkInterval() time.Duration {
	return time.Duration(settings.WorkIntervalMinutes) * time.Minute
}

// BreakDuration returns the configured break phase length.
func (settings Settings) BreakDuration() time.Duration {
	return time.Duration(settings.BreakDurationSeconds) * time.Second
}

// IdleThreshold returns the idle time after which work is suspended.
// Zero disables idle suspension.
func (settings Settings) IdleThreshold() time.Duration {
	return time.Duration(settings.IdlePauseMinutes) * time.Minute
}
