// This file implements hot reloading of configuration in development.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the configuration file for changes and hot reloads it.
// Reloads are only enabled in development; production instances keep the
// configuration they booted with.
type Watcher struct {
	mu        sync.RWMutex
	config    *Config
	path      string
	callbacks []func(*Config)
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewWatcher creates a configuration watcher for the file at path.
func NewWatcher(initial *Config, path string, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		config: initial,
		path:   path,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if initial.Environment != Development || path == "" {
		logger.Info("configuration hot reloading disabled",
			zap.String("environment", string(initial.Environment)))
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()
	logger.Info("configuration hot reloading enabled", zap.String("path", path))
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// OnReload registers a callback invoked after every successful reload.
func (w *Watcher) OnReload(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}

func (w *Watcher) watchLoop() {
	// Editors often emit several write events per save; debounce them.
	var debounce *time.Timer
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous configuration",
			zap.Error(err))
		return
	}

	w.mu.Lock()
	w.config = cfg
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded", zap.String("path", w.path))
	for _, fn := range callbacks {
		fn(cfg)
	}
}
