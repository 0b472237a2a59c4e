package timekeeper

import (
	"context"

	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
)

// Pause freezes a running phase. Pausing a frozen timer returns the current
// state unchanged.
func (keeper *TimeKeeper) Pause(_ context.Context) model.TimerState {
	keeper.mu.Lock()
	if keeper.state.Phase.Frozen() {
		snapshot := keeper.state
		keeper.mu.Unlock()
		return snapshot
	}
	keeper.freezeLocked(keeper.nowMs(), model.PhasePaused)
	snapshot := keeper.state
	keeper.mu.Unlock()

	log.Info().Int64("seconds_remaining", snapshot.SecondsRemaining).Msg("Timer paused")
	keeper.emitState(snapshot, EventPaused, EventTick)
	return snapshot
}

// Resume restores the phase that was paused so that the wall-clock math
// reproduces the frozen remaining time exactly. Only Paused resumes;
// Suspended ends through idle detection.
func (keeper *TimeKeeper) Resume(_ context.Context) model.TimerState {
	keeper.mu.Lock()
	if keeper.state.Phase != model.PhasePaused {
		snapshot := keeper.state
		keeper.mu.Unlock()
		return snapshot
	}

	restored := keeper.internal.PhaseBeforePause
	if restored != model.PhaseWorking && restored != model.PhaseBreaking {
		restored = model.PhaseWorking
	}
	elapsedBefore := keeper.state.PhaseDuration - keeper.state.SecondsRemaining
	keeper.state.Phase = restored
	keeper.state.PhaseStartedAt = keeper.nowMs() - elapsedBefore*1000
	snapshot := keeper.state
	keeper.mu.Unlock()

	log.Info().Str("phase", string(snapshot.Phase)).Int64("seconds_remaining", snapshot.SecondsRemaining).Msg("Timer resumed")
	keeper.emitState(snapshot, EventResumed, EventTick)
	return snapshot
}

// SkipBreak ends a running break as skipped and starts a fresh work phase.
// Outside Breaking it returns the current state unchanged.
func (keeper *TimeKeeper) SkipBreak(ctx context.Context) model.TimerState {
	settings := keeper.settings.Get()

	keeper.mu.Lock()
	if keeper.state.Phase != model.PhaseBreaking {
		snapshot := keeper.state
		keeper.mu.Unlock()
		return snapshot
	}
	nowMs := keeper.nowMs()
	demo := keeper.internal.DemoBreak
	pending := keeper.takeOpenBreakLocked(nowMs)
	if demo {
		keeper.endDemoLocked(nowMs, settings)
	} else {
		keeper.startWorkLocked(nowMs, settings)
	}
	snapshot := keeper.state
	keeper.mu.Unlock()

	log.Info().Bool("demo", demo).Msg("Break skipped")
	keeper.finalizeRecord(ctx, pending)
	keeper.emitState(snapshot, EventBreakSkipped, EventTick)
	return snapshot
}

// Reset starts a fresh work phase from any phase. An open break is closed
// as skipped.
func (keeper *TimeKeeper) Reset(ctx context.Context) model.TimerState {
	settings := keeper.settings.Get()

	keeper.mu.Lock()
	nowMs := keeper.nowMs()
	pending := keeper.takeOpenBreakLocked(nowMs)
	keeper.startWorkLocked(nowMs, settings)
	snapshot := keeper.state
	keeper.mu.Unlock()

	log.Info().Msg("Timer reset")
	keeper.finalizeRecord(ctx, pending)
	keeper.emitState(snapshot, EventTick)
	return snapshot
}

// TriggerDemoBreak runs a short break that opens no record, so a new user
// can preview it before onboarding completes. It reports false and changes
// nothing once onboarding is complete.
func (keeper *TimeKeeper) TriggerDemoBreak(ctx context.Context) (model.TimerState, bool) {
	if keeper.settings.Get().OnboardingCompleted {
		return keeper.State(), false
	}

	keeper.mu.Lock()
	nowMs := keeper.nowMs()
	pending := keeper.takeOpenBreakLocked(nowMs)
	keeper.state.Phase = model.PhaseBreaking
	keeper.state.PhaseDuration = keeper.options.DemoBreakSeconds
	keeper.state.SecondsRemaining = keeper.options.DemoBreakSeconds
	keeper.state.PhaseStartedAt = nowMs
	keeper.internal.DemoBreak = true
	snapshot := keeper.state
	keeper.mu.Unlock()

	log.Info().Int64("duration_seconds", snapshot.PhaseDuration).Msg("Demo break started")
	keeper.finalizeRecord(ctx, pending)
	keeper.emitState(snapshot, EventBreakStarted, EventTick)
	return snapshot, true
}
