// Package storage reads the YAML process configuration and watches it for
// changes.
package storage

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"eyerest/internal/core/model"
)

const (
	// ConfigFileName is the process configuration file inside the config dir.
	ConfigFileName = "config.yaml"
	// DatabaseFileName is the default database file inside the data dir.
	DatabaseFileName = "eyerest.db"

	DefaultHTTPAddr       = "127.0.0.1:7420"
	DefaultLogLevel       = "info"
	DefaultIdleCheckTicks = 30
)

// Config is the process-level configuration. User preferences live in the
// database settings row instead.
type Config struct {
	DatabasePath   string `yaml:"database_path"`
	HTTPAddr       string `yaml:"http_addr"`
	LogLevel       string `yaml:"log_level"`
	IdleCheckTicks int    `yaml:"idle_check_ticks"`
	Location       string `yaml:"location,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(dataDir string) Config {
	return Config{
		DatabasePath:   filepath.Join(dataDir, DatabaseFileName),
		HTTPAddr:       DefaultHTTPAddr,
		LogLevel:       DefaultLogLevel,
		IdleCheckTicks: DefaultIdleCheckTicks,
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults; a present but invalid file is an error.
func LoadConfig(path, dataDir string) (Config, error) {
	config := DefaultConfig(dataDir)

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("read config file: %w", err)
	}

	var fileData Config
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return config, fmt.Errorf("parse config yaml: %w", err)
	}
	applyFileConfig(&config, fileData)

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// SaveConfig writes config to path, creating the directory.
func SaveConfig(path string, config Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate rejects values that cannot be applied.
func (config Config) Validate() error {
	if strings.TrimSpace(config.DatabasePath) == "" {
		return &model.ConfigurationError{Field: "database_path", Reason: "must not be empty"}
	}
	if _, _, err := net.SplitHostPort(config.HTTPAddr); err != nil {
		return &model.ConfigurationError{Field: "http_addr", Reason: err.Error()}
	}
	if _, err := zerolog.ParseLevel(config.LogLevel); err != nil {
		return &model.ConfigurationError{Field: "log_level", Reason: err.Error()}
	}
	if config.IdleCheckTicks < 1 || config.IdleCheckTicks > 3600 {
		return &model.ConfigurationError{Field: "idle_check_ticks", Reason: "must be between 1 and 3600"}
	}
	if _, err := config.TimeLocation(); err != nil {
		return &model.ConfigurationError{Field: "location", Reason: err.Error()}
	}
	return nil
}

// Level returns the parsed log level, info when unset.
func (config Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || config.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// TimeLocation returns the zone that defines calendar days. Empty means the
// process-local zone.
func (config Config) TimeLocation() (*time.Location, error) {
	if config.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(config.Location)
}

func applyFileConfig(config *Config, fileData Config) {
	if fileData.DatabasePath != "" {
		config.DatabasePath = fileData.DatabasePath
	}
	if fileData.HTTPAddr != "" {
		config.HTTPAddr = fileData.HTTPAddr
	}
	if fileData.LogLevel != "" {
		config.LogLevel = strings.ToLower(fileData.LogLevel)
	}
	if fileData.IdleCheckTicks != 0 {
		config.IdleCheckTicks = fileData.IdleCheckTicks
	}
	config.Location = fileData.Location
}
