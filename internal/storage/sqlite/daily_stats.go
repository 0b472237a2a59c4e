package sqlite

import (
	"context"
	"database/sql"

	"eyerest/internal/core/model"
)

// UpsertDailyStats inserts or replaces the cached rollup for stats.Date.
func (s *Store) UpsertDailyStats(ctx context.Context, stats model.DailyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		INSERT INTO daily_stats_cache
		(date, breaks_completed, breaks_skipped, total_rest_seconds, longest_streak, compliance_rate)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			breaks_completed = excluded.breaks_completed,
			breaks_skipped = excluded.breaks_skipped,
			total_rest_seconds = excluded.total_rest_seconds,
			longest_streak = excluded.longest_streak,
			compliance_rate = excluded.compliance_rate
	`
	_, err := s.db.ExecContext(ctx, query,
		stats.Date, stats.BreaksCompleted, stats.BreaksSkipped,
		stats.TotalRestSecs, stats.LongestStreak, stats.ComplianceRate,
	)
	return model.NewStorageError("upsert daily stats", err)
}

// QueryDailyStatsCache returns cached rows with from <= date <= to, ascending.
func (s *Store) QueryDailyStatsCache(ctx context.Context, from, to string) ([]model.DailyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT date, breaks_completed, breaks_skipped, total_rest_seconds, longest_streak, compliance_rate
		FROM daily_stats_cache
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, model.NewStorageError("query daily stats", err)
	}
	defer rows.Close()
	return scanDailyStatsRows(rows, "query daily stats")
}

// ListDailyStats returns every cached row, ascending by date.
func (s *Store) ListDailyStats(ctx context.Context) ([]model.DailyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT date, breaks_completed, breaks_skipped, total_rest_seconds, longest_streak, compliance_rate
		FROM daily_stats_cache
		ORDER BY date ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, model.NewStorageError("list daily stats", err)
	}
	defer rows.Close()
	return scanDailyStatsRows(rows, "list daily stats")
}

func scanDailyStatsRows(rows *sql.Rows, op string) ([]model.DailyStats, error) {
	var result []model.DailyStats
	for rows.Next() {
		var stats model.DailyStats
		if err := rows.Scan(
			&stats.Date, &stats.BreaksCompleted, &stats.BreaksSkipped,
			&stats.TotalRestSecs, &stats.LongestStreak, &stats.ComplianceRate,
		); err != nil {
			return nil, model.NewStorageError(op, err)
		}
		result = append(result, stats)
	}
	return result, model.NewStorageError(op, rows.Err())
}
