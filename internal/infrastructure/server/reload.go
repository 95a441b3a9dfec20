package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/evalguard/internal/infrastructure/logging"
)

// DefaultReloadDebounce is the quiet period after the last file event
const DefaultReloadDebounce = 500 * time.Millisecond

// Reloader watches rule files and reloads the gate when they change
type Reloader struct {
	watcher  *fsnotify.Watcher
	glob     string
	reload   func() error
	logger   *logging.Logger
	debounce time.Duration
}

// NewReloader watches the directories a doublestar glob can match.
// fsnotify is not recursive, so each directory the glob can reach that
// exists now is added; directories created later are added as they appear.
func NewReloader(glob string, reload func() error, logger *logging.Logger) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	base, pattern := doublestar.SplitPattern(filepath.ToSlash(glob))
	base = filepath.FromSlash(base)
	maxDepth := -1
	if !strings.Contains(pattern, "**") {
		maxDepth = strings.Count(pattern, "/")
	}

	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if maxDepth >= 0 && depth(base, path) > maxDepth {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", base, err)
	}

	return &Reloader{
		watcher:  watcher,
		glob:     glob,
		reload:   reload,
		logger:   logger.Named("reload"),
		debounce: DefaultReloadDebounce,
	}, nil
}

// Run reloads after matching file events. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) {
	defer r.watcher.Close()

	var (
		mu       sync.Mutex
		debounce *time.Timer
	)
	defer func() {
		mu.Lock()
		if debounce != nil {
			debounce.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := r.watcher.Add(event.Name); err != nil {
						r.logger.Warn("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if !r.matches(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}

			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(r.debounce, r.reloadNow)
			mu.Unlock()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// Close stops watching. Run also closes the watcher when it returns.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}

func depth(base, path string) int {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func (r *Reloader) matches(name string) bool {
	ok, err := doublestar.PathMatch(r.glob, name)
	return err == nil && ok
}

func (r *Reloader) reloadNow() {
	if err := r.reload(); err != nil {
		r.logger.Error("Rule reload failed, keeping previous rules", zap.Error(err))
		return
	}
	r.logger.Info("Rules reloaded")
}
