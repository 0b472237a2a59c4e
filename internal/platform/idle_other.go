//go:build !linux && !darwin && !windows

package platform

func newIdleSource() IdleSource {
	return unavailableIdle{}
}
