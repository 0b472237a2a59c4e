package analytics

import "eyerest/internal/core/model"

// Rollup folds one day's records, oldest first, into its daily stats.
// Only completed records add rest time. A skipped or still in-progress record
// ends the run of consecutive completions.
func Rollup(date string, outcomes []model.BreakOutcome) model.DailyStats {
	stats := model.ZeroStats(date)
	run := 0

	for _, outcome := range outcomes {
		switch {
		case outcome.Completed && !outcome.Skipped:
			stats.BreaksCompleted++
			stats.TotalRestSecs += outcome.DurationSeconds
			run++
			if run > stats.LongestStreak {
				stats.LongestStreak = run
			}
		case outcome.Skipped:
			stats.BreaksSkipped++
			run = 0
		default:
			run = 0
		}
	}

	stats.ComplianceRate = ComplianceRate(stats.BreaksCompleted, stats.BreaksSkipped)
	return stats
}

// ComplianceRate is completed/(completed+skipped), or 0 without data.
func ComplianceRate(completed, skipped int) float64 {
	total := completed + skipped
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}
