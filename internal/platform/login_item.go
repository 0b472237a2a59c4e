package platform

import (
	"errors"
	"fmt"
	"os"
)

// ErrLoginItemUnsupported is returned where no login mechanism is known.
var ErrLoginItemUnsupported = errors.New("launch at login is not supported on this platform")

// LoginItem registers an executable to start with the user session.
type LoginItem struct {
	execPath  string
	homeDir   string
	configDir string
}

// NewLoginItem returns a LoginItem for the running executable.
func NewLoginItem() (*LoginItem, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		configDir = fallbackConfigDir(homeDir)
	}
	return &LoginItem{execPath: execPath, homeDir: homeDir, configDir: configDir}, nil
}

// Apply registers or unregisters the login item. Unregistering an absent
// item succeeds.
func (item *LoginItem) Apply(enabled bool) error {
	if enabled {
		if err := item.enable(); err != nil {
			return fmt.Errorf("enable launch at login: %w", err)
		}
		return nil
	}
	if err := item.disable(); err != nil {
		return fmt.Errorf("disable launch at login: %w", err)
	}
	return nil
}
