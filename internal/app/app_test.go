package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eyerest/internal/core/model"
	"eyerest/internal/core/timekeeper"
	"eyerest/internal/storage/sqlite"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(d)
	clock.mu.Unlock()
}

// AppSuite exercises the command surface against a temp-dir database.
type AppSuite struct {
	suite.Suite
	ctx    context.Context
	clock  *testClock
	dbPath string
	app    *App
	events <-chan timekeeper.Event
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &testClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	s.dbPath = filepath.Join(s.T().TempDir(), "eyerest.db")
	s.open()
}

func (s *AppSuite) TearDownTest() {
	if s.app != nil {
		s.NoError(s.app.Close())
	}
}

func (s *AppSuite) open() {
	application, err := New(s.ctx, Config{DatabasePath: s.dbPath, Location: time.UTC, Now: s.clock.Now})
	s.Require().NoError(err)
	s.app = application
	s.events = application.Timer().Subscribe(512)
}

func (s *AppSuite) reopen() {
	s.Require().NoError(s.app.Close())
	s.app = nil
	s.open()
}

func (s *AppSuite) eventTypes() []timekeeper.EventType {
	var types []timekeeper.EventType
	for {
		select {
		case event := <-s.events:
			types = append(types, event.Type)
		default:
			return types
		}
	}
}

func (s *AppSuite) completeOneBreak() {
	s.clock.Advance(20 * time.Minute)
	s.Require().Equal(model.PhaseBreaking, s.app.Timer().Tick(s.ctx).Phase)
	s.clock.Advance(20 * time.Second)
	s.Require().Equal(model.PhaseWorking, s.app.Timer().Tick(s.ctx).Phase)
}

func (s *AppSuite) TestFreshInstallStartsPaused() {
	state := s.app.TimerState()
	s.Equal(model.PhasePaused, state.Phase)
	s.Equal(0, state.BreaksCompletedToday)
	s.False(s.app.OnboardingState().OnboardingCompleted)
}

func (s *AppSuite) TestStartupHydratesTodaysCount() {
	s.Require().NoError(s.app.Close())
	s.app = nil

	store, err := sqlite.Open(s.ctx, sqlite.Config{Path: s.dbPath})
	s.Require().NoError(err)
	today := s.clock.Now().Add(-2 * time.Hour).UnixMilli()
	yesterday := s.clock.Now().Add(-24 * time.Hour).UnixMilli()
	for _, startedAt := range []int64{today, today + 60_000, yesterday} {
		id, err := store.InsertBreakRecord(s.ctx, startedAt, 1200)
		s.Require().NoError(err)
		s.Require().NoError(store.FinalizeBreakRecord(s.ctx, id, 20, true, false))
	}
	id, err := store.InsertBreakRecord(s.ctx, today+120_000, 1200)
	s.Require().NoError(err)
	s.Require().NoError(store.FinalizeBreakRecord(s.ctx, id, 3, false, true))
	s.Require().NoError(store.Close())

	s.open()
	s.Equal(2, s.app.TimerState().BreaksCompletedToday)
}

func (s *AppSuite) TestCompleteOnboardingStartsTimer() {
	state, err := s.app.CompleteOnboarding(s.ctx)
	s.Require().NoError(err)

	s.True(state.OnboardingCompleted)
	s.True(state.IsFirstDay)
	s.Equal(model.PhaseWorking, s.app.TimerState().Phase)
	s.Contains(s.eventTypes(), timekeeper.EventOnboardingCompleted)

	s.reopen()
	s.True(s.app.Settings().OnboardingCompleted)
	s.Equal(model.PhaseWorking, s.app.TimerState().Phase)
}

func (s *AppSuite) TestResetOnboardingPausesTimer() {
	_, err := s.app.CompleteOnboarding(s.ctx)
	s.Require().NoError(err)
	_, err = s.app.MarkTooltipSeen(s.ctx, "streak")
	s.Require().NoError(err)

	state, err := s.app.ResetOnboarding(s.ctx)
	s.Require().NoError(err)

	s.False(state.OnboardingCompleted)
	s.Empty(state.TooltipsSeen)
	s.Equal(model.PhasePaused, s.app.TimerState().Phase)
}

func (s *AppSuite) TestMarkTooltipSeenPersists() {
	seen, err := s.app.MarkTooltipSeen(s.ctx, "streak")
	s.Require().NoError(err)
	s.Equal([]string{"streak"}, seen)
	seen, err = s.app.MarkTooltipSeen(s.ctx, "timer")
	s.Require().NoError(err)
	s.Equal([]string{"streak", "timer"}, seen)

	s.reopen()
	s.Equal([]string{"streak", "timer"}, s.app.OnboardingState().TooltipsSeen)

	_, err = s.app.MarkTooltipSeen(s.ctx, "")
	var validation *model.ValidationError
	s.ErrorAs(err, &validation)
}

func (s *AppSuite) TestUpdateSettingsValidatesBeforeApplying() {
	invalid := s.app.Settings()
	invalid.DailyGoal = 0

	_, err := s.app.UpdateSettings(s.ctx, invalid)
	var configErr *model.ConfigurationError
	s.Require().ErrorAs(err, &configErr)
	s.Equal("daily_goal", configErr.Field)
	s.Equal(24, s.app.Settings().DailyGoal)
	s.Empty(s.eventTypes())
}

func (s *AppSuite) TestUpdateSettingsPersistsAndKeepsOnboardingFields() {
	_, err := s.app.CompleteOnboarding(s.ctx)
	s.Require().NoError(err)
	s.eventTypes()

	requested := model.DefaultSettings()
	requested.DailyGoal = 8
	requested.WorkIntervalMinutes = 30
	requested.Theme = model.ThemeDark

	updated, err := s.app.UpdateSettings(s.ctx, requested)
	s.Require().NoError(err)
	s.Equal(8, updated.DailyGoal)
	s.True(updated.OnboardingCompleted)
	s.Equal([]timekeeper.EventType{timekeeper.EventSettingsChanged}, s.eventTypes())

	s.reopen()
	s.Equal(updated, s.app.Settings())
	s.Equal(int64(1800), s.app.TimerState().PhaseDuration)
}

type recordingLoginItem struct {
	applied []bool
	err     error
}

func (item *recordingLoginItem) Apply(enabled bool) error {
	item.applied = append(item.applied, enabled)
	return item.err
}

func (s *AppSuite) TestLaunchAtLoginAppliedOnlyOnChange() {
	item := &recordingLoginItem{}
	s.app.loginItem = item

	requested := s.app.Settings()
	requested.DailyGoal = 10
	_, err := s.app.UpdateSettings(s.ctx, requested)
	s.Require().NoError(err)
	s.Empty(item.applied)

	requested.LaunchAtLogin = true
	_, err = s.app.UpdateSettings(s.ctx, requested)
	s.Require().NoError(err)
	s.Equal([]bool{true}, item.applied)

	item.err = errors.New("registry locked")
	requested.LaunchAtLogin = false
	updated, err := s.app.UpdateSettings(s.ctx, requested)
	s.Require().NoError(err, "login item failures do not fail the update")
	s.False(updated.LaunchAtLogin)
	s.Equal([]bool{true, false}, item.applied)
}

func (s *AppSuite) TestBreakFlowFeedsAnalytics() {
	_, err := s.app.CompleteOnboarding(s.ctx)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.app.Run(ctx) }()
	defer func() {
		cancel()
		s.NoError(<-done)
	}()
	s.completeOneBreak()

	summary, err := s.app.AnalyticsSummary(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, summary.Today.BreaksCompleted)
	s.Equal(int64(1), summary.LifetimeBreaks)
	s.Equal(int64(20), summary.LifetimeRestSeconds)
	s.Equal(1, s.app.TimerState().BreaksCompletedToday)

	history, err := s.app.BreakHistory(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.True(history[0].Completed)

	s.Eventually(func() bool { return s.app.Settings().FirstBreakCompleted }, 2*time.Second, 20*time.Millisecond)
}

func (s *AppSuite) TestDailyStatsRange() {
	stats, err := s.app.DailyStatsRange(s.ctx, "2024-03-10", "2024-03-15")
	s.Require().NoError(err)
	s.Len(stats, 6)

	_, err = s.app.DailyStatsRange(s.ctx, "03/10/2024", "2024-03-15")
	var validation *model.ValidationError
	s.ErrorAs(err, &validation)
}

func (s *AppSuite) TestBreakHistoryValidatesPaging() {
	var validation *model.ValidationError
	_, err := s.app.BreakHistory(s.ctx, 501, 0)
	s.ErrorAs(err, &validation)
	_, err = s.app.BreakHistory(s.ctx, -1, 0)
	s.ErrorAs(err, &validation)
	_, err = s.app.BreakHistory(s.ctx, 10, -5)
	s.ErrorAs(err, &validation)

	history, err := s.app.BreakHistory(s.ctx, 500, 0)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *AppSuite) TestClearAllData() {
	_, err := s.app.CompleteOnboarding(s.ctx)
	s.Require().NoError(err)
	s.completeOneBreak()
	s.eventTypes()

	s.Require().NoError(s.app.ClearAllData(s.ctx))

	s.Equal(model.DefaultSettings(), s.app.Settings())
	s.Equal(0, s.app.TimerState().BreaksCompletedToday)
	history, err := s.app.BreakHistory(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Empty(history)
	summary, err := s.app.AnalyticsSummary(s.ctx)
	s.Require().NoError(err)
	s.Zero(summary.LifetimeBreaks)
	s.Contains(s.eventTypes(), timekeeper.EventDataCleared)
}

func (s *AppSuite) TestClearAllDataDuringBreak() {
	_, err := s.app.CompleteOnboarding(s.ctx)
	s.Require().NoError(err)
	s.clock.Advance(20 * time.Minute)
	s.Require().Equal(model.PhaseBreaking, s.app.Timer().Tick(s.ctx).Phase)

	s.Require().NoError(s.app.ClearAllData(s.ctx))

	s.clock.Advance(20 * time.Second)
	state := s.app.Timer().Tick(s.ctx)
	s.Equal(model.PhaseWorking, state.Phase)
	s.Equal(0, state.BreaksCompletedToday)

	history, err := s.app.BreakHistory(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Empty(history)
	stats, err := s.app.DailyStatsRange(s.ctx, "2024-03-15", "2024-03-15")
	s.Require().NoError(err)
	s.Require().Len(stats, 1)
	s.Zero(stats[0].BreaksCompleted)
}

func (s *AppSuite) TestDemoBreakOnlyBeforeOnboarding() {
	state, ok := s.app.TriggerDemoBreak(s.ctx)
	s.True(ok)
	s.Equal(model.PhaseBreaking, state.Phase)

	s.clock.Advance(5 * time.Second)
	s.Equal(model.PhasePaused, s.app.Timer().Tick(s.ctx).Phase)

	_, err := s.app.CompleteOnboarding(s.ctx)
	s.Require().NoError(err)
	_, ok = s.app.TriggerDemoBreak(s.ctx)
	s.False(ok)

	history, err := s.app.BreakHistory(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Empty(history)
}
