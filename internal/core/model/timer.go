package model

// Phase is the current timer mode.
type Phase string

const (
	PhaseWorking   Phase = "Working"
	PhaseBreaking  Phase = "Breaking"
	PhasePaused    Phase = "Paused"
	PhaseSuspended Phase = "Suspended"
)

// Frozen reports whether the countdown is stopped in this phase.
func (phase Phase) Frozen() bool {
	return phase == PhasePaused || phase == PhaseSuspended
}

// TimerState is the externally visible snapshot of the timer.
type TimerState struct {
	Phase                Phase `json:"phase"`
	SecondsRemaining     int64 `json:"seconds_remaining"`
	PhaseDuration        int64 `json:"phase_duration"`
	PhaseStartedAt       int64 `json:"phase_started_at"`
	BreaksCompletedToday int   `json:"breaks_completed_today"`
}

// TimerInternalState is bookkeeping the timer never exposes.
type TimerInternalState struct {
	PhaseBeforePause     Phase
	CurrentBreakRecordID *int64
	WorkStartedAt        int64
	DemoBreak            bool
}
