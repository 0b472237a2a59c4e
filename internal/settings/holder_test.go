package settings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"eyerest/internal/core/model"
)

func TestHolderUpdateIsCopyOnWrite(t *testing.T) {
	holder := NewHolder(model.DefaultSettings())
	before := holder.Get()

	after := holder.Update(func(s *model.Settings) { s.DailyGoal = 10 })

	assert.Equal(t, 24, before.DailyGoal)
	assert.Equal(t, 10, after.DailyGoal)
	assert.Equal(t, 10, holder.Get().DailyGoal)
}

func TestHolderReset(t *testing.T) {
	holder := NewHolder(model.DefaultSettings())
	holder.Update(func(s *model.Settings) {
		s.WorkIntervalMinutes = 45
		s.OnboardingCompleted = true
	})

	reset := holder.Reset()

	assert.Equal(t, model.DefaultSettings(), reset)
	assert.False(t, holder.Get().OnboardingCompleted)
}

func TestHolderConcurrentAccess(t *testing.T) {
	holder := NewHolder(model.DefaultSettings())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			holder.Update(func(s *model.Settings) { s.DailyGoal++ })
		}()
		go func() {
			defer wg.Done()
			_ = holder.Get()
		}()
	}
	wg.Wait()
	assert.Equal(t, 74, holder.Get().DailyGoal)
}
