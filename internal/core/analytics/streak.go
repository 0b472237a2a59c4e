package analytics

import (
	"time"

	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
)

// currentStreak walks back from today over exactly adjacent calendar days.
// A today that has not met the goal yet is left out without ending the run.
func currentStreak(today time.Time, todayStats model.DailyStats, completedByDate map[string]int, goal int) int {
	streak := 0
	if todayStats.BreaksCompleted >= goal {
		streak = 1
	}

	day := today.AddDate(0, 0, -1)
	for {
		completed, ok := completedByDate[day.Format(model.DateLayout)]
		if !ok || completed < goal {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// bestStreak scans cached rows in ascending date order. Adjacency is checked
// against the previous scanned row whether or not it met the goal, so a gap in
// the cache ends a run just like a failing day does.
func bestStreak(entries []model.DailyStats, goal int, loc *time.Location) int {
	best := 0
	current := 0
	var previous time.Time

	for _, entry := range entries {
		date, err := time.ParseInLocation(model.DateLayout, entry.Date, loc)
		if err != nil {
			log.Warn().Str("date", entry.Date).Msg("Skipping malformed daily stats row")
			continue
		}

		if entry.BreaksCompleted >= goal {
			if previous.IsZero() || model.DaysBetween(previous, date) == 1 {
				current++
			} else {
				current = 1
			}
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
		previous = date
	}
	return best
}

func completedByDate(entries []model.DailyStats) map[string]int {
	result := make(map[string]int, len(entries))
	for _, entry := range entries {
		result[entry.Date] = entry.BreaksCompleted
	}
	return result
}
