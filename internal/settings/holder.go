// Package settings holds the in-memory copy of the user settings row.
package settings

import (
	"sync"

	"eyerest/internal/core/model"
)

// Holder guards the current settings with its own lock, independent of the
// timer state lock.
type Holder struct {
	mu       sync.RWMutex
	settings model.Settings
}

// NewHolder creates a holder seeded with initial.
func NewHolder(initial model.Settings) *Holder {
	return &Holder{settings: initial}
}

// Get returns a copy of the current settings.
func (holder *Holder) Get() model.Settings {
	holder.mu.RLock()
	defer holder.mu.RUnlock()
	return holder.settings
}

// Set replaces the current settings.
func (holder *Holder) Set(updated model.Settings) {
	holder.mu.Lock()
	holder.settings = updated
	holder.mu.Unlock()
}

// Update applies mutate to a copy under the lock and stores the result.
// The stored value is returned.
func (holder *Holder) Update(mutate func(*model.Settings)) model.Settings {
	holder.mu.Lock()
	defer holder.mu.Unlock()
	next := holder.settings
	mutate(&next)
	holder.settings = next
	return next
}

// Reset restores the defaults.
func (holder *Holder) Reset() model.Settings {
	defaults := model.DefaultSettings()
	holder.Set(defaults)
	return defaults
}
