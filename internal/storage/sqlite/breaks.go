package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"eyerest/internal/core/model"
)

// InsertBreakRecord opens an in-progress break record and returns its id.
func (s *Store) InsertBreakRecord(ctx context.Context, startedAt, precedingWorkSeconds int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		INSERT INTO break_records (started_at, duration_seconds, completed, skipped, preceding_work_seconds)
		VALUES (?, 0, 0, 0, ?)
	`
	result, err := s.db.ExecContext(ctx, query, startedAt, precedingWorkSeconds)
	if err != nil {
		return 0, model.NewStorageError("insert break record", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, model.NewStorageError("insert break record", err)
	}
	return id, nil
}

// FinalizeBreakRecord closes an in-progress record as completed or skipped.
// A record can be finalized only once.
func (s *Store) FinalizeBreakRecord(ctx context.Context, id, durationSeconds int64, completed, skipped bool) error {
	if completed == skipped {
		return &model.ValidationError{Field: "outcome", Reason: "exactly one of completed or skipped must be set"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		UPDATE break_records
		SET duration_seconds = ?, completed = ?, skipped = ?
		WHERE id = ? AND completed = 0 AND skipped = 0
	`
	result, err := s.db.ExecContext(ctx, query, durationSeconds, boolToInt(completed), boolToInt(skipped), id)
	if err != nil {
		return model.NewStorageError("finalize break record", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.NewStorageError("finalize break record", err)
	}
	if affected == 1 {
		return nil
	}

	var existing int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM break_records WHERE id = ?`, id).Scan(&existing)
	if err == sql.ErrNoRows {
		return model.NewStorageError("finalize break record", fmt.Errorf("id %d: %w", id, model.ErrNotFound))
	}
	if err != nil {
		return model.NewStorageError("finalize break record", err)
	}
	return model.NewStorageError("finalize break record", fmt.Errorf("id %d: %w", id, model.ErrAlreadyFinalized))
}

// GetBreakRecord returns one record by id.
func (s *Store) GetBreakRecord(ctx context.Context, id int64) (model.BreakRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT id, started_at, duration_seconds, completed, skipped, preceding_work_seconds
		FROM break_records
		WHERE id = ?
	`
	record, err := scanBreakRecord(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return model.BreakRecord{}, model.NewStorageError("get break record", model.ErrNotFound)
	}
	if err != nil {
		return model.BreakRecord{}, model.NewStorageError("get break record", err)
	}
	return record, nil
}

// QueryRecordsInRange returns the outcomes of records started within
// [startMs, endMs], oldest first.
func (s *Store) QueryRecordsInRange(ctx context.Context, startMs, endMs int64) ([]model.BreakOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT completed, skipped, duration_seconds
		FROM break_records
		WHERE started_at >= ? AND started_at <= ?
		ORDER BY started_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, startMs, endMs)
	if err != nil {
		return nil, model.NewStorageError("query records in range", err)
	}
	defer rows.Close()

	var outcomes []model.BreakOutcome
	for rows.Next() {
		var outcome model.BreakOutcome
		if err := rows.Scan(&outcome.Completed, &outcome.Skipped, &outcome.DurationSeconds); err != nil {
			return nil, model.NewStorageError("query records in range", err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, model.NewStorageError("query records in range", rows.Err())
}

// QueryRecordsPage returns records newest first.
func (s *Store) QueryRecordsPage(ctx context.Context, limit, offset int) ([]model.BreakRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT id, started_at, duration_seconds, completed, skipped, preceding_work_seconds
		FROM break_records
		ORDER BY started_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, model.NewStorageError("query records page", err)
	}
	defer rows.Close()

	records := make([]model.BreakRecord, 0, limit)
	for rows.Next() {
		record, err := scanBreakRecord(rows)
		if err != nil {
			return nil, model.NewStorageError("query records page", err)
		}
		records = append(records, record)
	}
	return records, model.NewStorageError("query records page", rows.Err())
}

// CountCompletedInRange counts completed records started within [startMs, endMs].
func (s *Store) CountCompletedInRange(ctx context.Context, startMs, endMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT COUNT(*)
		FROM break_records
		WHERE completed = 1 AND started_at >= ? AND started_at <= ?
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, startMs, endMs).Scan(&count); err != nil {
		return 0, model.NewStorageError("count completed breaks", err)
	}
	return count, nil
}

// QueryLifetimeTotals sums every completed record.
func (s *Store) QueryLifetimeTotals(ctx context.Context) (model.LifetimeTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0)
		FROM break_records
		WHERE completed = 1
	`
	var totals model.LifetimeTotals
	if err := s.db.QueryRowContext(ctx, query).Scan(&totals.CompletedBreaks, &totals.RestSeconds); err != nil {
		return model.LifetimeTotals{}, model.NewStorageError("query lifetime totals", err)
	}
	return totals, nil
}

// ClearAll wipes records and the rollup cache and resets settings to defaults.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStorageError("clear all", err)
	}
	statements := []string{
		`DELETE FROM break_records`,
		`DELETE FROM daily_stats_cache`,
		`DELETE FROM settings`,
		`INSERT OR IGNORE INTO settings (id) VALUES (1)`,
	}
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			_ = tx.Rollback()
			return model.NewStorageError("clear all", err)
		}
	}
	return model.NewStorageError("clear all", tx.Commit())
}

func scanBreakRecord(scanner interface{ Scan(...any) error }) (model.BreakRecord, error) {
	var record model.BreakRecord
	err := scanner.Scan(
		&record.ID, &record.StartedAt, &record.DurationSeconds,
		&record.Completed, &record.Skipped, &record.PrecedingWorkSeconds,
	)
	return record, err
}
