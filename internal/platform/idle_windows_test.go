//go:build windows

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowsIdleSourceReports(t *testing.T) {
	source := newIdleSource()
	_, isLastInput := source.(lastInputSource)
	assert.True(t, isLastInput, "user32 and kernel32 procs resolve on every supported Windows")

	seconds, ok := source.IdleSeconds()
	if ok {
		assert.Less(t, seconds, uint64(49*24*3600))
	}
}
