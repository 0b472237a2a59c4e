//go:build darwin

package platform

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"
)

type ioregSource struct{}

func newIdleSource() IdleSource {
	if _, err := exec.LookPath("ioreg"); err != nil {
		return unavailableIdle{}
	}
	return ioregSource{}
}

func (ioregSource) IdleSeconds() (uint64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), idleQueryTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, "ioreg", "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		log.Debug().Err(err).Msg("ioreg failed")
		return 0, false
	}
	return parseHIDIdleTime(string(output))
}
