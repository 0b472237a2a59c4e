package timekeeper

import (
	"time"

	"eyerest/internal/core/model"
)

// EventType names a notification fanned out to subscribers.
type EventType string

const (
	// EventTick carries the refreshed snapshot after every tick and command.
	EventTick EventType = "timer-tick"
	// EventPaused is emitted on a manual pause or idle suspension.
	EventPaused EventType = "timer-paused"
	// EventResumed is emitted when a paused or suspended timer runs again.
	EventResumed EventType = "timer-resumed"
	// EventBreakStarted is emitted when a break, including a demo, begins.
	EventBreakStarted EventType = "break-started"
	// EventBreakComplete is emitted when a break runs to zero.
	EventBreakComplete EventType = "break-completed"
	// EventBreakSkipped is emitted when the user skips a break.
	EventBreakSkipped EventType = "break-skipped"

	// EventSettingsChanged carries the updated settings as payload.
	EventSettingsChanged EventType = "settings-changed"
	// EventOnboardingCompleted carries the new onboarding state as payload.
	EventOnboardingCompleted EventType = "onboarding-completed"
	// EventDataCleared follows a wipe of all stored data.
	EventDataCleared EventType = "data-cleared"
)

// Event carries the timer snapshot taken when it was produced. Payload is
// set only for events published from outside the state machine.
type Event struct {
	Type    EventType        `json:"type"`
	State   model.TimerState `json:"state"`
	Payload any              `json:"payload,omitempty"`
	At      time.Time        `json:"at"`
}
