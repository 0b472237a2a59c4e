package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// ConfigWatcher reloads the config file when it is written and passes the
// result to onChange. It watches the parent directory since editors often
// replace the file instead of writing it in place.
type ConfigWatcher struct {
	path     string
	dataDir  string
	onChange func(Config)
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	timer    *time.Timer
}

// NewConfigWatcher creates a watcher for path.
func NewConfigWatcher(path, dataDir string, onChange func(Config)) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		dataDir:  dataDir,
		onChange: onChange,
		watcher:  fsw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Run blocks until ctx is done.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	parent := filepath.Dir(w.path)
	if err := w.watcher.Add(parent); err != nil {
		return fmt.Errorf("watch %s: %w", parent, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Config watcher error")
		}
	}
}

func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *ConfigWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *ConfigWatcher) reload() {
	config, err := LoadConfig(w.path, w.dataDir)
	if err != nil {
		log.Warn().Err(err).Str("path", w.path).Msg("Ignoring invalid config change")
		return
	}
	log.Info().Str("path", w.path).Str("log_level", config.LogLevel).Msg("Config reloaded")
	if w.onChange != nil {
		w.onChange(config)
	}
}
