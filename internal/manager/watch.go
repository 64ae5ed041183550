package manager

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before
// OnChange runs.
const DefaultDebounce = 500 * time.Millisecond

// WatchConfig configures Watch.
type WatchConfig struct {
	// Dir is the document root, laid out as DirSource expects.
	Dir string

	// Debounce is the quiet period after the last event. Zero or negative
	// values fall back to DefaultDebounce.
	Debounce time.Duration

	// OnChange receives the changed document paths, relative to Dir.
	OnChange func(ctx context.Context, changed []string) error

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Watch blocks until ctx is cancelled, calling OnChange once per burst of
// changes to command documents under Dir. Namespace directories created
// while watching are picked up. Callbacks never overlap; changes that arrive
// while one runs are delivered in the next.
func Watch(ctx context.Context, cfg WatchConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	base, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return fmt.Errorf("watch: resolve directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsw.Close()

	if err := addDirectories(fsw, base, logger); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if cfg.OnChange != nil {
			if err := cfg.OnChange(ctx, changed); err != nil {
				logger.Warn("watch callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watch: event channel closed")
			}

			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := addDirectories(fsw, evt.Name, logger); err != nil {
						logger.Warn("watch: add directory", "path", evt.Name, "error", err)
					}
					continue
				}
			}
			if !IsDocument(evt.Name) {
				continue
			}

			rel, err := filepath.Rel(base, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			logger.Debug("document changed", "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[filepath.ToSlash(rel)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(debounce, fire)
			} else {
				timer.Reset(debounce)
			}
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: error channel closed")
			}
			logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// addDirectories registers root and every directory below it.
func addDirectories(fsw *fsnotify.Watcher, root string, logger *slog.Logger) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("watch: skipping inaccessible path", "path", path, "error", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}
