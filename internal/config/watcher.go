package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultReloadDebounce = 500 * time.Millisecond

// Reloader applies a changed config file.
type Reloader interface {
	Reload(path string) error
}

// Watcher reloads the catalog when the config file changes.
type Watcher struct {
	path     string
	reloader Reloader
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	reloads chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, reloader Reloader, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		path:     absPath,
		reloader: reloader,
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
		reloads:  make(chan struct{}, 1),
	}, nil
}

// Start watches the directory holding the config file, which survives
// editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)

	w.logger.Info("watching config for catalog changes", "path", w.path)

	w.wg.Go(func() { w.watchLoop(ctx) })
	w.wg.Go(func() { w.reloadLoop(ctx) })

	return nil
}

// Stop ends watching and waits for pending work.
func (w *Watcher) Stop() error {
	var err error
	w.stop.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	name := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}

			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				w.logger.Debug("config change detected", "file", event.Name, "op", event.Op.String())
				w.requestReload()
			case event.Has(fsnotify.Remove):
				w.logger.Warn("config file removed, keeping current catalog", "file", event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) requestReload() {
	select {
	case w.reloads <- struct{}{}:
	default:
		// reload already pending
	}
}

// reloadLoop coalesces bursts of events into one reload per debounce
// window.
func (w *Watcher) reloadLoop(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.reloads:
			timer.Reset(w.debounce)
		case <-timer.C:
			if err := w.reloader.Reload(w.path); err != nil {
				w.logger.Error("failed to reload catalog, keeping current one", "error", err)
				continue
			}
			w.logger.Info("catalog reloaded", "path", w.path)
		}
	}
}
