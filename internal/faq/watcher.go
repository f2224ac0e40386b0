package faq

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Loader replaces the stored FAQ set.
type Loader interface {
	Replace(entries []Entry) (int, error)
}

// Watcher reloads the FAQ file into a store whenever it changes on disk.
type Watcher struct {
	path     string
	loader   Loader
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	// OnReload, if set, is called after each reload attempt.
	OnReload func(n int, err error)
}

// NewWatcher creates a watcher for the FAQ file at path.
func NewWatcher(path string, loader Loader, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	// Watch the directory: editors often replace the file instead of writing it.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		loader:   loader,
		debounce: 200 * time.Millisecond,
		logger:   logger.Named("faq"),
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the watch loop until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("faq watcher error", zap.Error(err))
		}
	}
}

// Reload loads the file into the store immediately.
func (w *Watcher) Reload() (int, error) {
	entries, err := LoadFile(w.path)
	if err != nil {
		return 0, err
	}
	return w.loader.Replace(entries)
}

func (w *Watcher) reload() {
	n, err := w.Reload()
	if err != nil {
		w.logger.Warn("faq reload failed", zap.String("path", w.path), zap.Error(err))
	} else {
		w.logger.Info("faq reloaded", zap.String("path", w.path), zap.Int("entries", n))
	}
	if w.OnReload != nil {
		w.OnReload(n, err)
	}
}

// Close stops the watch loop and releases the file watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.watcher.Close()
	})
	return err
}
