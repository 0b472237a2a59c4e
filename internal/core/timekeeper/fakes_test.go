package timekeeper

import (
	"context"
	"sync"
	"time"

	"eyerest/internal/core/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(d)
	clock.mu.Unlock()
}

type finalizeCall struct {
	id        int64
	duration  int64
	completed bool
	skipped   bool
}

type insertCall struct {
	startedAt     int64
	precedingWork int64
}

type fakeRecorder struct {
	mu          sync.Mutex
	nextID      int64
	inserts     []insertCall
	finalizes   []finalizeCall
	insertErr   error
	finalizeErr error
	onInsert    func()
}

func (recorder *fakeRecorder) InsertBreakRecord(_ context.Context, startedAt, precedingWork int64) (int64, error) {
	if recorder.onInsert != nil {
		recorder.onInsert()
	}
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.insertErr != nil {
		return 0, recorder.insertErr
	}
	recorder.nextID++
	recorder.inserts = append(recorder.inserts, insertCall{startedAt: startedAt, precedingWork: precedingWork})
	return recorder.nextID, nil
}

func (recorder *fakeRecorder) FinalizeBreakRecord(_ context.Context, id, duration int64, completed, skipped bool) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.finalizeErr != nil {
		return recorder.finalizeErr
	}
	recorder.finalizes = append(recorder.finalizes, finalizeCall{id: id, duration: duration, completed: completed, skipped: skipped})
	return nil
}

type fakeStats struct {
	mu   sync.Mutex
	days []string
}

func (stats *fakeStats) RecomputeDailyStats(_ context.Context, midnight time.Time) (model.DailyStats, error) {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	date := midnight.Format(model.DateLayout)
	stats.days = append(stats.days, date)
	return model.ZeroStats(date), nil
}

func (stats *fakeStats) DayOf(ms int64) time.Time {
	return model.Midnight(time.UnixMilli(ms), time.UTC)
}

type fakeIdle struct {
	mu      sync.Mutex
	seconds uint64
	ok      bool
}

func (idle *fakeIdle) IdleSeconds() (uint64, bool) {
	idle.mu.Lock()
	defer idle.mu.Unlock()
	return idle.seconds, idle.ok
}

func (idle *fakeIdle) set(seconds uint64, ok bool) {
	idle.mu.Lock()
	idle.seconds = seconds
	idle.ok = ok
	idle.mu.Unlock()
}
