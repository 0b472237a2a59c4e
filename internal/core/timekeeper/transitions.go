package timekeeper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
)

type transitionKind int

const (
	transitionTick transitionKind = iota
	transitionStartBreak
	transitionCompleteBreak
)

// transition describes the side effects of one locked decision.
type transition struct {
	kind     transitionKind
	snapshot model.TimerState

	// StartBreak
	breakSeq      uint64
	startedAt     int64
	precedingWork int64

	// CompleteBreak
	finalize *finalization
	demo     bool
}

// finalization is an open break record to close after the lock is released.
type finalization struct {
	recordID  int64
	duration  int64
	startedAt int64
	completed bool
}

// Tick recomputes the running phase from the wall clock and performs a
// transition when it reaches zero. Every IdleCheckTicks ticks the idle
// source is consulted first.
func (keeper *TimeKeeper) Tick(ctx context.Context) model.TimerState {
	keeper.mu.Lock()
	keeper.idleTicks++
	checkIdle := keeper.idleTicks >= keeper.options.IdleCheckTicks
	if checkIdle {
		keeper.idleTicks = 0
	}
	keeper.mu.Unlock()

	if checkIdle {
		keeper.checkIdle()
	}

	settings := keeper.settings.Get()
	keeper.mu.Lock()
	next := keeper.advanceLocked(keeper.nowMs(), settings)
	keeper.mu.Unlock()

	keeper.apply(ctx, next)
	return next.snapshot
}

func (keeper *TimeKeeper) advanceLocked(nowMs int64, settings model.Settings) transition {
	state := &keeper.state
	if state.Phase.Frozen() {
		return transition{kind: transitionTick, snapshot: *state}
	}

	state.SecondsRemaining = remainingSeconds(nowMs, state.PhaseStartedAt, state.PhaseDuration)
	if state.SecondsRemaining > 0 {
		return transition{kind: transitionTick, snapshot: *state}
	}

	if state.Phase == model.PhaseWorking {
		precedingWork := state.PhaseDuration
		breakDuration := int64(settings.BreakDuration() / time.Second)

		state.Phase = model.PhaseBreaking
		state.PhaseDuration = breakDuration
		state.SecondsRemaining = breakDuration
		state.PhaseStartedAt = nowMs
		keeper.internal.WorkStartedAt = 0
		keeper.internal.CurrentBreakRecordID = nil

		keeper.breakSeq++
		keeper.activeBreak = keeper.breakSeq
		keeper.breakStartedAt = nowMs

		return transition{
			kind:          transitionStartBreak,
			snapshot:      *state,
			breakSeq:      keeper.breakSeq,
			startedAt:     nowMs,
			precedingWork: precedingWork,
		}
	}

	// Breaking ran to zero.
	next := transition{kind: transitionCompleteBreak, demo: keeper.internal.DemoBreak}
	if id := keeper.internal.CurrentBreakRecordID; id != nil {
		next.finalize = &finalization{
			recordID:  *id,
			duration:  state.PhaseDuration,
			startedAt: keeper.breakStartedAt,
			completed: true,
		}
	}
	counted := !keeper.breakDiscarded
	keeper.clearBreakLocked()

	if next.demo {
		keeper.endDemoLocked(nowMs, settings)
	} else {
		keeper.startWorkLocked(nowMs, settings)
		if counted {
			state.BreaksCompletedToday++
		}
	}
	next.snapshot = *state
	return next
}

func (keeper *TimeKeeper) apply(ctx context.Context, next transition) {
	switch next.kind {
	case transitionStartBreak:
		log.Info().Int64("preceding_work_seconds", next.precedingWork).Msg("Break started")
		keeper.openRecord(ctx, next)
		keeper.emitState(next.snapshot, EventBreakStarted, EventTick)
	case transitionCompleteBreak:
		log.Info().Bool("demo", next.demo).Msg("Break completed")
		keeper.finalizeRecord(ctx, next.finalize)
		keeper.emitState(next.snapshot, EventBreakComplete, EventTick)
	default:
		keeper.emitState(next.snapshot, EventTick)
	}
}

// openRecord inserts the record for a started break. If the break already
// ended while the insert was in flight, the record is closed as skipped.
func (keeper *TimeKeeper) openRecord(ctx context.Context, next transition) {
	id, err := keeper.recorder.InsertBreakRecord(ctx, next.startedAt, next.precedingWork)
	if err != nil {
		log.Error().Err(err).Str("op", "insert_break_record").Msg("Failed to persist break start")
		return
	}

	keeper.mu.Lock()
	if keeper.activeBreak == next.breakSeq {
		keeper.internal.CurrentBreakRecordID = &id
		keeper.mu.Unlock()
		return
	}
	nowMs := keeper.nowMs()
	keeper.mu.Unlock()

	keeper.finalizeRecord(ctx, &finalization{
		recordID:  id,
		duration:  elapsedSeconds(nowMs, next.startedAt),
		startedAt: next.startedAt,
	})
}

// finalizeRecord closes a record and refreshes the rollup of the day the
// break started in. Failures are logged and swallowed.
func (keeper *TimeKeeper) finalizeRecord(ctx context.Context, pending *finalization) {
	if pending == nil {
		return
	}
	err := keeper.recorder.FinalizeBreakRecord(ctx, pending.recordID, pending.duration, pending.completed, !pending.completed)
	if err != nil {
		log.Error().Err(err).Str("op", "finalize_break_record").Int64("record_id", pending.recordID).Msg("Failed to persist break outcome")
		return
	}
	if keeper.stats == nil {
		return
	}
	if _, err := keeper.stats.RecomputeDailyStats(ctx, keeper.stats.DayOf(pending.startedAt)); err != nil {
		log.Error().Err(err).Str("op", "recompute_daily_stats").Int64("record_id", pending.recordID).Msg("Failed to refresh daily stats")
	}
}

// takeOpenBreakLocked detaches the open record of a running or frozen break
// and returns it for finalization as skipped. A reference left over outside
// a break is discarded.
func (keeper *TimeKeeper) takeOpenBreakLocked(nowMs int64) *finalization {
	id := keeper.internal.CurrentBreakRecordID
	startedAt := keeper.breakStartedAt
	keeper.clearBreakLocked()
	if id == nil {
		return nil
	}

	var duration int64
	switch {
	case keeper.state.Phase == model.PhaseBreaking:
		duration = elapsedSeconds(nowMs, keeper.state.PhaseStartedAt)
	case keeper.state.Phase.Frozen() && keeper.internal.PhaseBeforePause == model.PhaseBreaking:
		duration = keeper.state.PhaseDuration - keeper.state.SecondsRemaining
	default:
		return nil
	}
	return &finalization{recordID: *id, duration: duration, startedAt: startedAt}
}

func (keeper *TimeKeeper) clearBreakLocked() {
	keeper.internal.CurrentBreakRecordID = nil
	keeper.activeBreak = 0
	keeper.breakStartedAt = 0
	keeper.breakDiscarded = false
}

// endDemoLocked returns to Paused with a full work interval ready, since the
// demo only runs before onboarding has started the timer.
func (keeper *TimeKeeper) endDemoLocked(nowMs int64, settings model.Settings) {
	keeper.startWorkLocked(nowMs, settings)
	keeper.internal.PhaseBeforePause = model.PhaseWorking
	keeper.state.Phase = model.PhasePaused
}
