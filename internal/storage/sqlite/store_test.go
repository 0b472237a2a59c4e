package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"eyerest/internal/core/model"
	"eyerest/resources"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "eyerest.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// StoreSuite is a test suite for Store operations.
type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = testStore(s.T())
	s.ctx = context.Background()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) insertFinalized(startedAt, duration int64, completed bool) int64 {
	id, err := s.store.InsertBreakRecord(s.ctx, startedAt, 1200)
	s.Require().NoError(err)
	s.Require().NoError(s.store.FinalizeBreakRecord(s.ctx, id, duration, completed, !completed))
	return id
}

func (s *StoreSuite) TestInsertCreatesInProgressRecord() {
	id, err := s.store.InsertBreakRecord(s.ctx, 1_700_000_000_000, 1200)
	s.Require().NoError(err)
	s.Greater(id, int64(0))

	record, err := s.store.GetBreakRecord(s.ctx, id)
	s.Require().NoError(err)
	s.True(record.InProgress())
	s.Equal(int64(0), record.DurationSeconds)
	s.Equal(int64(1200), record.PrecedingWorkSeconds)
	s.Equal(int64(1_700_000_000_000), record.StartedAt)
}

func (s *StoreSuite) TestFinalizeExactlyOnce() {
	id, err := s.store.InsertBreakRecord(s.ctx, 1_700_000_000_000, 1200)
	s.Require().NoError(err)

	s.Require().NoError(s.store.FinalizeBreakRecord(s.ctx, id, 20, true, false))
	record, err := s.store.GetBreakRecord(s.ctx, id)
	s.Require().NoError(err)
	s.True(record.Completed)
	s.False(record.Skipped)
	s.Equal(int64(20), record.DurationSeconds)

	err = s.store.FinalizeBreakRecord(s.ctx, id, 5, false, true)
	s.Require().Error(err)
	s.True(errors.Is(err, model.ErrAlreadyFinalized))
	var storageErr *model.StorageError
	s.True(errors.As(err, &storageErr))
}

func (s *StoreSuite) TestFinalizeRejectsInvalidOutcomes() {
	id, err := s.store.InsertBreakRecord(s.ctx, 1_700_000_000_000, 1200)
	s.Require().NoError(err)

	tests := []struct {
		name      string
		completed bool
		skipped   bool
	}{
		{name: "both set", completed: true, skipped: true},
		{name: "neither set", completed: false, skipped: false},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.store.FinalizeBreakRecord(s.ctx, id, 10, tt.completed, tt.skipped)
			var validationErr *model.ValidationError
			s.True(errors.As(err, &validationErr))
		})
	}
}

func (s *StoreSuite) TestFinalizeUnknownRecord() {
	err := s.store.FinalizeBreakRecord(s.ctx, 999, 20, true, false)
	s.True(errors.Is(err, model.ErrNotFound))
}

func (s *StoreSuite) TestQueryRecordsInRangeOrderedAndBounded() {
	base := int64(1_700_000_000_000)
	s.insertFinalized(base+2000, 20, true)
	s.insertFinalized(base, 5, false)
	s.insertFinalized(base+1000, 20, true)
	s.insertFinalized(base+10_000, 20, true)

	outcomes, err := s.store.QueryRecordsInRange(s.ctx, base, base+2000)
	s.Require().NoError(err)
	s.Require().Len(outcomes, 3)
	s.True(outcomes[0].Skipped)
	s.Equal(int64(5), outcomes[0].DurationSeconds)
	s.True(outcomes[1].Completed)
	s.True(outcomes[2].Completed)
}

func (s *StoreSuite) TestQueryRecordsPageNewestFirst() {
	base := int64(1_700_000_000_000)
	for i := int64(0); i < 5; i++ {
		s.insertFinalized(base+i*60_000, 20, true)
	}

	page, err := s.store.QueryRecordsPage(s.ctx, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(base+4*60_000, page[0].StartedAt)
	s.Equal(base+3*60_000, page[1].StartedAt)

	page, err = s.store.QueryRecordsPage(s.ctx, 10, 4)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(base, page[0].StartedAt)
}

func (s *StoreSuite) TestLifetimeTotalsOnlyCountCompleted() {
	base := int64(1_700_000_000_000)
	s.insertFinalized(base, 20, true)
	s.insertFinalized(base+1, 20, true)
	s.insertFinalized(base+2, 7, false)
	_, err := s.store.InsertBreakRecord(s.ctx, base+3, 1200)
	s.Require().NoError(err)

	totals, err := s.store.QueryLifetimeTotals(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), totals.CompletedBreaks)
	s.Equal(int64(40), totals.RestSeconds)
}

func (s *StoreSuite) TestLifetimeTotalsEmpty() {
	totals, err := s.store.QueryLifetimeTotals(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.LifetimeTotals{}, totals)
}

func (s *StoreSuite) TestCountCompletedInRange() {
	base := int64(1_700_000_000_000)
	s.insertFinalized(base, 20, true)
	s.insertFinalized(base+60_000, 5, false)
	s.insertFinalized(base+120_000, 20, true)

	count, err := s.store.CountCompletedInRange(s.ctx, base, base+120_000)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StoreSuite) TestUpsertDailyStatsReplaces() {
	first := model.DailyStats{Date: "2026-03-01", BreaksCompleted: 1, ComplianceRate: 1}
	second := model.DailyStats{Date: "2026-03-01", BreaksCompleted: 3, BreaksSkipped: 1, TotalRestSecs: 60, LongestStreak: 3, ComplianceRate: 0.75}

	s.Require().NoError(s.store.UpsertDailyStats(s.ctx, first))
	s.Require().NoError(s.store.UpsertDailyStats(s.ctx, second))

	rows, err := s.store.QueryDailyStatsCache(s.ctx, "2026-03-01", "2026-03-01")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(second, rows[0])
}

func (s *StoreSuite) TestQueryDailyStatsCacheRangeAscending() {
	for _, date := range []string{"2026-03-05", "2026-03-01", "2026-03-03", "2026-04-01"} {
		s.Require().NoError(s.store.UpsertDailyStats(s.ctx, model.DailyStats{Date: date}))
	}

	rows, err := s.store.QueryDailyStatsCache(s.ctx, "2026-03-01", "2026-03-31")
	s.Require().NoError(err)
	dates := make([]string, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, row.Date)
	}
	s.Equal([]string{"2026-03-01", "2026-03-03", "2026-03-05"}, dates)

	all, err := s.store.ListDailyStats(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 4)
	s.Equal("2026-04-01", all[3].Date)
}

func (s *StoreSuite) TestSettingsDefaultsOnFreshDatabase() {
	loaded, err := s.store.LoadSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.DefaultSettings(), loaded)
}

func (s *StoreSuite) TestSettingsRoundTrip() {
	completedAt := int64(1_700_000_000_000)
	settings := model.DefaultSettings()
	settings.WorkIntervalMinutes = 45
	settings.BreakDurationSeconds = 30
	settings.SoundEnabled = false
	settings.SoundVolume = 0.25
	settings.DailyGoal = 12
	settings.IdlePauseMinutes = 0
	settings.Theme = model.ThemeDark
	settings.OnboardingCompleted = true
	settings.OnboardingCompletedAt = &completedAt
	settings.TooltipsSeen = `["streak"]`
	settings.FirstBreakCompleted = true

	s.Require().NoError(s.store.SaveSettings(s.ctx, settings))
	loaded, err := s.store.LoadSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(settings, loaded)
}

func (s *StoreSuite) TestClearAllResetsEverything() {
	s.insertFinalized(1_700_000_000_000, 20, true)
	s.Require().NoError(s.store.UpsertDailyStats(s.ctx, model.DailyStats{Date: "2026-03-01", BreaksCompleted: 1}))
	settings := model.DefaultSettings()
	settings.WorkIntervalMinutes = 10
	s.Require().NoError(s.store.SaveSettings(s.ctx, settings))

	s.Require().NoError(s.store.ClearAll(s.ctx))

	records, err := s.store.QueryRecordsPage(s.ctx, 100, 0)
	s.Require().NoError(err)
	s.Empty(records)
	cached, err := s.store.ListDailyStats(s.ctx)
	s.Require().NoError(err)
	s.Empty(cached)
	loaded, err := s.store.LoadSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(20, loaded.WorkIntervalMinutes)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eyerest.db")
	ctx := context.Background()

	first, err := Open(ctx, Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, Config{Path: path})
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestOnboardingAutoCompletesForExistingInstalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eyerest.db")
	ctx := context.Background()

	// Simulate a database created before the onboarding migration existed.
	legacy, err := sql.Open(driverName, path)
	require.NoError(t, err)
	_, err = legacy.Exec(legacyInitialSchema(t))
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO _migrations (name, applied_at) VALUES ('001_initial', 0)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO break_records (started_at, duration_seconds, completed, skipped, preceding_work_seconds) VALUES (1, 20, 1, 0, 1200)`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	now := time.UnixMilli(1_750_000_000_000)
	store, err := Open(ctx, Config{Path: path, Now: func() time.Time { return now }})
	require.NoError(t, err)
	defer store.Close()

	settings, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.OnboardingCompleted)
	assert.True(t, settings.FirstBreakCompleted)
	require.NotNil(t, settings.OnboardingCompletedAt)
	assert.Equal(t, now.UnixMilli(), *settings.OnboardingCompletedAt)
}

func TestOnboardingNotCompletedOnFreshInstall(t *testing.T) {
	store := testStore(t)
	settings, err := store.LoadSettings(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.OnboardingCompleted)
	assert.Nil(t, settings.OnboardingCompletedAt)
}

func legacyInitialSchema(t *testing.T) string {
	t.Helper()
	migrations, err := resources.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	return migrations[0].SQL
}
