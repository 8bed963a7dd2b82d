// Package watch re-runs a conversion whenever one of its input files
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a file is
// converted again. Editors often write a file in several steps.
const DefaultDebounce = 200 * time.Millisecond

// Handler is called with the path of a changed file.
type Handler func(ctx context.Context, path string) error

// Watcher watches a set of input files.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// New creates a watcher for files.
func New(files []string, opts Options) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		debounce: opts.Debounce,
		logger:   opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Run blocks until ctx is cancelled, calling fn for each file that changed.
// Calls happen one at a time on the watching goroutine; a handler error is
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Directories are watched rather than files so that editors which
	// replace a file by renaming a temporary one are still seen.
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
	}

	w.logger.Info("watching for changes", "files", len(w.files), "debounce_ms", w.debounce.Milliseconds())

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			for _, p := range paths {
				if err := fn(ctx, p); err != nil {
					w.logger.Error("conversion failed", "path", p, "error", err)
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
