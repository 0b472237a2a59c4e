package platform

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

const idleQueryTimeout = 2 * time.Second

// IdleSource reports seconds since the last keyboard or mouse input.
type IdleSource interface {
	IdleSeconds() (uint64, bool)
}

// NewIdleSource returns the detector for the running OS. When the OS offers
// none, the returned source always reports unavailable.
func NewIdleSource() IdleSource {
	return newIdleSource()
}

type unavailableIdle struct{}

func (unavailableIdle) IdleSeconds() (uint64, bool) {
	return 0, false
}

// parseIdleMillis reads a millisecond count printed by xprintidle.
func parseIdleMillis(output string) (uint64, bool) {
	millis, err := strconv.ParseUint(strings.TrimSpace(output), 10, 64)
	if err != nil {
		return 0, false
	}
	return millis / 1000, true
}

// parseHIDIdleTime finds the first HIDIdleTime nanosecond value in ioreg
// output.
func parseHIDIdleTime(output string) (uint64, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, `"HIDIdleTime"`) {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			return 0, false
		}
		nanos, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, false
		}
		return nanos / uint64(time.Second), true
	}
	return 0, false
}

// idleMillisSince subtracts a 32-bit last-input tick from the current tick
// count. Both wrap after 49.7 days, so only the low 32 bits are compared.
func idleMillisSince(nowTicks uint64, lastInput uint32) uint64 {
	return uint64(uint32(nowTicks) - lastInput)
}
