// Package analytics derives daily rollups, streaks and lifetime totals from
// persisted break records.
package analytics

import (
	"context"
	"fmt"
	"time"

	"eyerest/internal/core/model"
)

// MaxRangeDays bounds a single range query.
const MaxRangeDays = 3660

// Store is the subset of the persistence adapter the engine reads and writes.
type Store interface {
	QueryRecordsInRange(ctx context.Context, startMs, endMs int64) ([]model.BreakOutcome, error)
	UpsertDailyStats(ctx context.Context, stats model.DailyStats) error
	QueryDailyStatsCache(ctx context.Context, from, to string) ([]model.DailyStats, error)
	ListDailyStats(ctx context.Context) ([]model.DailyStats, error)
	QueryLifetimeTotals(ctx context.Context) (model.LifetimeTotals, error)
}

// Config contains runtime options for Engine.
type Config struct {
	// Location defines calendar day boundaries. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

// Engine computes analytics. It never mutates break records; it only writes
// daily stats cache rows.
type Engine struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// New creates an Engine over store.
func New(store Store, config Config) *Engine {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Engine{store: store, loc: config.Location, now: config.Now}
}

// Today returns local midnight of the current day.
func (engine *Engine) Today() time.Time {
	return model.Midnight(engine.now(), engine.loc)
}

// DayOf returns local midnight of the day containing the epoch millisecond ms.
func (engine *Engine) DayOf(ms int64) time.Time {
	return model.Midnight(time.UnixMilli(ms), engine.loc)
}

// RecomputeDailyStats rebuilds the rollup for the day starting at midnight
// and upserts it into the cache.
func (engine *Engine) RecomputeDailyStats(ctx context.Context, midnight time.Time) (model.DailyStats, error) {
	midnight = model.Midnight(midnight, engine.loc)
	date := midnight.Format(model.DateLayout)
	startMs, endMs := model.DayBounds(midnight)

	outcomes, err := engine.store.QueryRecordsInRange(ctx, startMs, endMs)
	if err != nil {
		return model.DailyStats{}, fmt.Errorf("recompute %s: %w", date, err)
	}

	stats := Rollup(date, outcomes)
	if err := engine.store.UpsertDailyStats(ctx, stats); err != nil {
		return model.DailyStats{}, fmt.Errorf("recompute %s: %w", date, err)
	}
	return stats, nil
}

// RecomputeToday rebuilds the current day's rollup.
func (engine *Engine) RecomputeToday(ctx context.Context) (model.DailyStats, error) {
	return engine.RecomputeDailyStats(ctx, engine.Today())
}

// GetDailyStatsRange parses two YYYY-MM-DD keys and returns GetRange for them.
func (engine *Engine) GetDailyStatsRange(ctx context.Context, from, to string) ([]model.DailyStats, error) {
	fromDay, err := model.ParseDate("from", from, engine.loc)
	if err != nil {
		return nil, err
	}
	toDay, err := model.ParseDate("to", to, engine.loc)
	if err != nil {
		return nil, err
	}
	return engine.GetRange(ctx, fromDay, toDay)
}

// GetRange returns one entry per calendar day in [from, to], ascending, with
// zero-filled entries for days without a cached row. Today is recomputed
// first when it falls in the range.
func (engine *Engine) GetRange(ctx context.Context, from, to time.Time) ([]model.DailyStats, error) {
	from = model.Midnight(from, engine.loc)
	to = model.Midnight(to, engine.loc)

	days := model.DaysBetween(from, to) + 1
	if days < 1 {
		return nil, &model.ValidationError{Field: "range", Reason: "from must not be after to"}
	}
	if days > MaxRangeDays {
		return nil, &model.ValidationError{Field: "range", Reason: fmt.Sprintf("must not exceed %d days", MaxRangeDays)}
	}

	today := engine.Today()
	if !today.Before(from) && !today.After(to) {
		if _, err := engine.RecomputeDailyStats(ctx, today); err != nil {
			return nil, err
		}
	}

	fromKey := from.Format(model.DateLayout)
	toKey := to.Format(model.DateLayout)
	cached, err := engine.store.QueryDailyStatsCache(ctx, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("daily stats %s..%s: %w", fromKey, toKey, err)
	}
	byDate := make(map[string]model.DailyStats, len(cached))
	for _, stats := range cached {
		byDate[stats.Date] = stats
	}

	result := make([]model.DailyStats, 0, days)
	for i := 0; i < days; i++ {
		key := from.AddDate(0, 0, i).Format(model.DateLayout)
		if stats, ok := byDate[key]; ok {
			result = append(result, stats)
			continue
		}
		result = append(result, model.ZeroStats(key))
	}
	return result, nil
}

// CurrentStreak counts consecutive days, ending today or yesterday, whose
// completed breaks reach dailyGoal.
func (engine *Engine) CurrentStreak(ctx context.Context, dailyGoal int) (int, error) {
	if err := validateGoal(dailyGoal); err != nil {
		return 0, err
	}
	todayStats, err := engine.RecomputeToday(ctx)
	if err != nil {
		return 0, err
	}
	return engine.currentStreak(ctx, todayStats, dailyGoal)
}

func (engine *Engine) currentStreak(ctx context.Context, todayStats model.DailyStats, dailyGoal int) (int, error) {
	entries, err := engine.store.ListDailyStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("current streak: %w", err)
	}
	return currentStreak(engine.Today(), todayStats, completedByDate(entries), dailyGoal), nil
}

// BestStreak returns the longest run of adjacent cached days meeting dailyGoal.
func (engine *Engine) BestStreak(ctx context.Context, dailyGoal int) (int, error) {
	if err := validateGoal(dailyGoal); err != nil {
		return 0, err
	}
	entries, err := engine.store.ListDailyStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("best streak: %w", err)
	}
	return bestStreak(entries, dailyGoal, engine.loc), nil
}

// LifetimeTotals counts completed breaks and their rest time, independent of
// the daily cache.
func (engine *Engine) LifetimeTotals(ctx context.Context) (model.LifetimeTotals, error) {
	totals, err := engine.store.QueryLifetimeTotals(ctx)
	if err != nil {
		return model.LifetimeTotals{}, fmt.Errorf("lifetime totals: %w", err)
	}
	return totals, nil
}

// BuildSummary composes the dashboard view. Storage failures are returned,
// never zero-filled.
func (engine *Engine) BuildSummary(ctx context.Context, dailyGoal int) (model.AnalyticsSummary, error) {
	if err := validateGoal(dailyGoal); err != nil {
		return model.AnalyticsSummary{}, err
	}

	today := engine.Today()
	todayStats, err := engine.RecomputeDailyStats(ctx, today)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}

	last7, err := engine.GetRange(ctx, today.AddDate(0, 0, -6), today)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}
	last30, err := engine.GetRange(ctx, today.AddDate(0, 0, -29), today)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}

	current, err := engine.currentStreak(ctx, todayStats, dailyGoal)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}
	best, err := engine.BestStreak(ctx, dailyGoal)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}
	totals, err := engine.LifetimeTotals(ctx)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}

	return model.AnalyticsSummary{
		Today:               todayStats,
		Last7Days:           last7,
		Last30Days:          last30,
		CurrentDayStreak:    current,
		BestDayStreak:       best,
		LifetimeBreaks:      totals.CompletedBreaks,
		LifetimeRestSeconds: totals.RestSeconds,
	}, nil
}

func validateGoal(dailyGoal int) error {
	if dailyGoal < 1 {
		return &model.ValidationError{Field: "daily_goal", Reason: "must be at least 1"}
	}
	return nil
}
