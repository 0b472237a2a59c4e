package model

// BreakRecord is one persisted break attempt.
type BreakRecord struct {
	ID                   int64 `json:"id"`
	StartedAt            int64 `json:"started_at"`
	DurationSeconds      int64 `json:"duration_seconds"`
	Completed            bool  `json:"completed"`
	Skipped              bool  `json:"skipped"`
	PrecedingWorkSeconds int64 `json:"preceding_work_seconds"`
}

// InProgress reports whether the record has not been finalized yet.
func (record BreakRecord) InProgress() bool {
	return !record.Completed && !record.Skipped
}

// BreakOutcome is the slice of a record the daily rollup needs.
type BreakOutcome struct {
	Completed       bool
	Skipped         bool
	DurationSeconds int64
}

// DailyStats is the cached rollup for one local calendar day.
type DailyStats struct {
	Date            string  `json:"date"`
	BreaksCompleted int     `json:"breaks_completed"`
	BreaksSkipped   int     `json:"breaks_skipped"`
	TotalRestSecs   int64   `json:"total_rest_seconds"`
	LongestStreak   int     `json:"longest_streak"`
	ComplianceRate  float64 `json:"compliance_rate"`
}

// ZeroStats returns the synthesized row for a day without data.
func ZeroStats(date string) DailyStats {
	return DailyStats{Date: date}
}

// LifetimeTotals aggregates every completed break ever recorded.
type LifetimeTotals struct {
	CompletedBreaks int64
	RestSeconds     int64
}

// AnalyticsSummary is the composed read-only dashboard view.
type AnalyticsSummary struct {
	Today               DailyStats   `json:"today"`
	Last7Days           []DailyStats `json:"last_7_days"`
	Last30Days          []DailyStats `json:"last_30_days"`
	CurrentDayStreak    int          `json:"current_day_streak"`
	BestDayStreak       int          `json:"best_day_streak"`
	LifetimeBreaks      int64        `json:"lifetime_breaks"`
	LifetimeRestSeconds int64        `json:"lifetime_rest_seconds"`
}

// OnboardingState is the decoded onboarding view of the settings row.
type OnboardingState struct {
	OnboardingCompleted   bool     `json:"onboarding_completed"`
	OnboardingCompletedAt *int64   `json:"onboarding_completed_at"`
	TooltipsSeen          []string `json:"tooltips_seen"`
	FirstBreakCompleted   bool     `json:"first_break_completed"`
	IsFirstDay            bool     `json:"is_first_day"`
}
