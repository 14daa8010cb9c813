package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file on write and hands the new value to every
// registered callback, debounced since editors commonly emit several
// write events for a single save.
type Watcher struct {
	watcher    *fsnotify.Watcher
	path       string
	mu         sync.RWMutex
	onReload   []func(*Config)
	ctx        context.Context
	cancel     context.CancelFunc
	debounce   time.Duration
}

// WatchFile starts watching configPath's containing directory (fsnotify
// follows renames/atomic saves better when the directory, not the file
// itself, is watched) and reloads the config on every write event.
func WatchFile(configPath string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  watcher,
		path:     configPath,
		ctx:      ctx,
		cancel:   cancel,
		debounce: 200 * time.Millisecond,
	}

	go w.eventLoop()
	return w, nil
}

// OnReload registers a callback invoked with the newly loaded config each
// time configPath changes and parses successfully. A config that fails to
// load or validate is dropped without being logged or reported, and the
// callbacks are not invoked for it.
func (w *Watcher) OnReload(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

func (w *Watcher) eventLoop() {
	var timer *time.Timer
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		return
	}
	w.mu.RLock()
	callbacks := make([]func(*Config), len(w.onReload))
	copy(callbacks, w.onReload)
	w.mu.RUnlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}
