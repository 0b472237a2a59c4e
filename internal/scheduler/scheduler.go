// Package scheduler drives the timer tick and the daily rollover job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
)

const (
	DefaultTickSpec     = "@every 1s"
	DefaultRolloverSpec = "5 0 0 * * *"
)

// Ticker advances the timer once.
type Ticker interface {
	Tick(ctx context.Context) model.TimerState
}

// Rollover rewrites a finished day's cached stats.
type Rollover interface {
	RecomputeDailyStats(ctx context.Context, midnight time.Time) (model.DailyStats, error)
	Today() time.Time
}

// Options configures job specs and the zone they are evaluated in.
type Options struct {
	Location     *time.Location
	TickSpec     string
	RolloverSpec string
}

// Scheduler runs jobs on one cron instance. Each job is wrapped so that a
// slow run makes the next one skip instead of overlap.
type Scheduler struct {
	cron     *cron.Cron
	ticker   Ticker
	rollover Rollover
	options  Options
}

// New creates a Scheduler. Jobs start when Run is called.
func New(ticker Ticker, rollover Rollover, options Options) *Scheduler {
	if options.Location == nil {
		options.Location = time.Local
	}
	if options.TickSpec == "" {
		options.TickSpec = DefaultTickSpec
	}
	if options.RolloverSpec == "" {
		options.RolloverSpec = DefaultRolloverSpec
	}

	logger := log.With().Str("component", "scheduler").Logger()
	cronLogger := cron.PrintfLogger(&logger)

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(options.Location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		ticker:   ticker,
		rollover: rollover,
		options:  options,
	}
}

// Run registers the jobs, starts them and blocks until ctx is done. Running
// jobs are waited for before it returns.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.options.TickSpec, func() { s.ticker.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule tick %q: %w", s.options.TickSpec, err)
	}
	if s.rollover != nil {
		if _, err := s.cron.AddFunc(s.options.RolloverSpec, func() { s.RolloverYesterday(ctx) }); err != nil {
			return fmt.Errorf("schedule rollover %q: %w", s.options.RolloverSpec, err)
		}
	}

	s.cron.Start()
	log.Info().Str("tick", s.options.TickSpec).Str("rollover", s.options.RolloverSpec).Msg("Scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
	return nil
}

// RolloverYesterday recomputes the day that just ended so its cached row
// includes breaks finalized after the last read.
func (s *Scheduler) RolloverYesterday(ctx context.Context) {
	yesterday := s.rollover.Today().AddDate(0, 0, -1)
	stats, err := s.rollover.RecomputeDailyStats(ctx, yesterday)
	if err != nil {
		log.Error().Err(err).Str("op", "rollover").Msg("Failed to roll over daily stats")
		return
	}
	log.Info().Str("date", stats.Date).Int("breaks_completed", stats.BreaksCompleted).Msg("Daily stats rolled over")
}
