package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName names the per-user configuration and data directories.
const AppName = "eyerest"

// ConfigDir returns <user config dir>/eyerest, falling back to the OS
// convention under the home directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err == nil && base != "" {
		return filepath.Join(base, AppName), nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}
	return filepath.Join(fallbackConfigDir(homeDir), AppName), nil
}

// DataDir returns the directory holding the database file.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get data dir: %w", err)
	}
	return filepath.Join(dataDirBase(homeDir), AppName), nil
}
