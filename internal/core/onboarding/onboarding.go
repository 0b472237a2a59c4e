// Package onboarding derives the first-run view from the settings row.
package onboarding

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
)

const maxTooltipIDLength = 64

// BuildState decodes the onboarding fields of settings. IsFirstDay is true
// when onboarding was completed on the current local day.
func BuildState(settings model.Settings, now time.Time, loc *time.Location) model.OnboardingState {
	state := model.OnboardingState{
		OnboardingCompleted:   settings.OnboardingCompleted,
		OnboardingCompletedAt: settings.OnboardingCompletedAt,
		TooltipsSeen:          DecodeTooltips(settings.TooltipsSeen),
		FirstBreakCompleted:   settings.FirstBreakCompleted,
	}
	if completedAt := settings.OnboardingCompletedAt; completedAt != nil {
		state.IsFirstDay = model.FormatDate(time.UnixMilli(*completedAt), loc) == model.FormatDate(now, loc)
	}
	return state
}

// Complete marks onboarding done at now.
func Complete(settings *model.Settings, now time.Time) {
	completedAt := now.UnixMilli()
	settings.OnboardingCompleted = true
	settings.OnboardingCompletedAt = &completedAt
}

// MarkTooltipSeen adds id to the seen list once and returns the list.
func MarkTooltipSeen(settings *model.Settings, id string) ([]string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxTooltipIDLength {
		return nil, &model.ValidationError{Field: "tooltip_id", Reason: "must be 1 to 64 characters"}
	}

	seen := DecodeTooltips(settings.TooltipsSeen)
	for _, existing := range seen {
		if existing == id {
			return seen, nil
		}
	}
	seen = append(seen, id)

	encoded, err := json.Marshal(seen)
	if err != nil {
		return nil, err
	}
	settings.TooltipsSeen = string(encoded)
	return seen, nil
}

// Reset clears every onboarding field.
func Reset(settings *model.Settings) {
	settings.OnboardingCompleted = false
	settings.OnboardingCompletedAt = nil
	settings.TooltipsSeen = "[]"
	settings.FirstBreakCompleted = false
}

// DecodeTooltips parses the stored JSON array. Malformed text yields an
// empty list.
func DecodeTooltips(raw string) []string {
	seen := make([]string, 0)
	if strings.TrimSpace(raw) == "" {
		return seen
	}
	if err := json.Unmarshal([]byte(raw), &seen); err != nil {
		log.Warn().Err(err).Msg("Ignoring malformed tooltips_seen value")
		return make([]string, 0)
	}
	if seen == nil {
		return make([]string, 0)
	}
	return seen
}
