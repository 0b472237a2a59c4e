//go:build linux

package platform

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"
)

type xprintidleSource struct {
	path string
}

func newIdleSource() IdleSource {
	path, err := exec.LookPath("xprintidle")
	if err != nil {
		log.Info().Msg("xprintidle not found, idle suspension disabled")
		return unavailableIdle{}
	}
	return &xprintidleSource{path: path}
}

func (source *xprintidleSource) IdleSeconds() (uint64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), idleQueryTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, source.path).Output()
	if err != nil {
		log.Debug().Err(err).Msg("xprintidle failed")
		return 0, false
	}
	return parseIdleMillis(string(output))
}
