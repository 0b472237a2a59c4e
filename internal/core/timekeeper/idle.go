package timekeeper

import (
	"time"

	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
)

// checkIdle suspends a running work phase after IdlePauseMinutes without
// input and starts a fresh work phase once input returns. A source that
// cannot report makes no decision. Disabling idle suspension while
// Suspended starts a fresh work phase.
func (keeper *TimeKeeper) checkIdle() {
	settings := keeper.settings.Get()

	keeper.mu.Lock()
	source := keeper.idle
	keeper.mu.Unlock()

	threshold := settings.IdleThreshold()
	if threshold == 0 || source == nil {
		keeper.leaveSuspension(settings, "idle suspension disabled")
		return
	}

	idleSeconds, ok := source.IdleSeconds()
	if !ok {
		return
	}
	if idleSeconds < uint64(threshold/time.Second) {
		keeper.leaveSuspension(settings, "input resumed")
		return
	}

	keeper.mu.Lock()
	if keeper.state.Phase != model.PhaseWorking {
		keeper.mu.Unlock()
		return
	}
	keeper.freezeLocked(keeper.nowMs(), model.PhaseSuspended)
	snapshot := keeper.state
	keeper.mu.Unlock()

	log.Info().Uint64("idle_seconds", idleSeconds).Msg("Timer suspended while idle")
	keeper.emitState(snapshot, EventPaused, EventTick)
}

// leaveSuspension starts a fresh work phase if the timer is Suspended.
func (keeper *TimeKeeper) leaveSuspension(settings model.Settings, reason string) {
	keeper.mu.Lock()
	if keeper.state.Phase != model.PhaseSuspended {
		keeper.mu.Unlock()
		return
	}
	keeper.startWorkLocked(keeper.nowMs(), settings)
	snapshot := keeper.state
	keeper.mu.Unlock()

	log.Info().Str("reason", reason).Msg("Timer left idle suspension")
	keeper.emitState(snapshot, EventResumed, EventTick)
}
