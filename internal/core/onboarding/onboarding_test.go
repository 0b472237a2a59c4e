package onboarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eyerest/internal/core/model"
)

func TestBuildStateFresh(t *testing.T) {
	state := BuildState(model.DefaultSettings(), time.Now(), time.UTC)

	assert.False(t, state.OnboardingCompleted)
	assert.Nil(t, state.OnboardingCompletedAt)
	assert.Empty(t, state.TooltipsSeen)
	assert.NotNil(t, state.TooltipsSeen)
	assert.False(t, state.FirstBreakCompleted)
	assert.False(t, state.IsFirstDay)
}

func TestIsFirstDayUsesLocalCalendar(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	completedAt := time.Date(2024, 3, 15, 22, 0, 0, 0, zone)
	settings := model.DefaultSettings()
	Complete(&settings, completedAt)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"same local day", time.Date(2024, 3, 15, 23, 59, 0, 0, zone), true},
		{"next local day", time.Date(2024, 3, 16, 0, 1, 0, 0, zone), false},
		{"earlier day", time.Date(2024, 3, 14, 12, 0, 0, 0, zone), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildState(settings, tt.now, zone).IsFirstDay)
		})
	}
}

func TestComplete(t *testing.T) {
	settings := model.DefaultSettings()
	now := time.UnixMilli(1_710_000_000_000)

	Complete(&settings, now)

	assert.True(t, settings.OnboardingCompleted)
	require.NotNil(t, settings.OnboardingCompletedAt)
	assert.Equal(t, int64(1_710_000_000_000), *settings.OnboardingCompletedAt)
}

func TestMarkTooltipSeen(t *testing.T) {
	settings := model.DefaultSettings()

	seen, err := MarkTooltipSeen(&settings, "streak")
	require.NoError(t, err)
	assert.Equal(t, []string{"streak"}, seen)

	seen, err = MarkTooltipSeen(&settings, "streak")
	require.NoError(t, err)
	assert.Equal(t, []string{"streak"}, seen)

	seen, err = MarkTooltipSeen(&settings, "timer")
	require.NoError(t, err)
	assert.Equal(t, []string{"streak", "timer"}, seen)
	assert.JSONEq(t, `["streak","timer"]`, settings.TooltipsSeen)
}

func TestMarkTooltipSeenRejectsBlankID(t *testing.T) {
	settings := model.DefaultSettings()
	_, err := MarkTooltipSeen(&settings, "  ")

	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "[]", settings.TooltipsSeen)
}

func TestReset(t *testing.T) {
	settings := model.DefaultSettings()
	Complete(&settings, time.Now())
	_, err := MarkTooltipSeen(&settings, "streak")
	require.NoError(t, err)
	settings.FirstBreakCompleted = true

	Reset(&settings)

	assert.False(t, settings.OnboardingCompleted)
	assert.Nil(t, settings.OnboardingCompletedAt)
	assert.Equal(t, "[]", settings.TooltipsSeen)
	assert.False(t, settings.FirstBreakCompleted)
}

func TestDecodeTooltipsToleratesBadInput(t *testing.T) {
	for _, raw := range []string{"", "null", "{", `"streak"`} {
		assert.Equal(t, []string{}, DecodeTooltips(raw), raw)
	}
	assert.Equal(t, []string{"a", "b"}, DecodeTooltips(`["a","b"]`))
}
