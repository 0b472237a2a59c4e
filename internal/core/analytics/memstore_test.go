package analytics

import (
	"context"
	"sort"
	"sync"

	"eyerest/internal/core/model"
)

type memoryStore struct {
	mu      sync.Mutex
	records []model.BreakRecord
	cache   map[string]model.DailyStats
	err     error
	upserts int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{cache: make(map[string]model.DailyStats)}
}

func (store *memoryStore) add(startedAt, duration int64, completed, skipped bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.records = append(store.records, model.BreakRecord{
		ID:              int64(len(store.records) + 1),
		StartedAt:       startedAt,
		DurationSeconds: duration,
		Completed:       completed,
		Skipped:         skipped,
	})
}

func (store *memoryStore) seed(date string, completed int) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.cache[date] = model.DailyStats{Date: date, BreaksCompleted: completed}
}

func (store *memoryStore) QueryRecordsInRange(_ context.Context, startMs, endMs int64) ([]model.BreakOutcome, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	matching := make([]model.BreakRecord, 0)
	for _, record := range store.records {
		if record.StartedAt >= startMs && record.StartedAt <= endMs {
			matching = append(matching, record)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool { return matching[i].StartedAt < matching[j].StartedAt })

	outcomes := make([]model.BreakOutcome, 0, len(matching))
	for _, record := range matching {
		outcomes = append(outcomes, model.BreakOutcome{
			Completed:       record.Completed,
			Skipped:         record.Skipped,
			DurationSeconds: record.DurationSeconds,
		})
	}
	return outcomes, nil
}

func (store *memoryStore) UpsertDailyStats(_ context.Context, stats model.DailyStats) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return store.err
	}
	store.upserts++
	store.cache[stats.Date] = stats
	return nil
}

func (store *memoryStore) QueryDailyStatsCache(_ context.Context, from, to string) ([]model.DailyStats, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	result := make([]model.DailyStats, 0)
	for date, stats := range store.cache {
		if date >= from && date <= to {
			result = append(result, stats)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (store *memoryStore) ListDailyStats(ctx context.Context) ([]model.DailyStats, error) {
	return store.QueryDailyStatsCache(ctx, "", "9999-12-31")
}

func (store *memoryStore) QueryLifetimeTotals(_ context.Context) (model.LifetimeTotals, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return model.LifetimeTotals{}, store.err
	}
	var totals model.LifetimeTotals
	for _, record := range store.records {
		if record.Completed {
			totals.CompletedBreaks++
			totals.RestSeconds += record.DurationSeconds
		}
	}
	return totals, nil
}
