//go:build darwin

package platform

import "path/filepath"

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

func dataDirBase(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}
