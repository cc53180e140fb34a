// Package observer watches a drop directory for goal files and
// submits them to the pipeline.
package observer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// doneSuffix marks goal files that have already been submitted
const doneSuffix = ".done"

// GoalFunc is called once per submitted goal file
type GoalFunc func(path, goal, context string)

// GoalWatcher monitors a directory for dropped goal files. A goal
// file is a .txt or .md file whose first non-empty line is the goal
// and whose remaining lines are context. Submitted files are renamed
// with a .done suffix so they are not picked up twice.
type GoalWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	callback GoalFunc
	log      *zap.Logger

	debounce time.Duration
	pending  map[string]struct{}
	timer    *time.Timer
	mu       sync.Mutex

	cancel context.CancelFunc
}

// NewGoalWatcher creates a watcher for the given drop directory,
// creating it if needed
func NewGoalWatcher(dir string, callback GoalFunc, log *zap.Logger) (*GoalWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	return &GoalWatcher{
		watcher:  watcher,
		dir:      dir,
		callback: callback,
		log:      log.Named("observer"),
		debounce: 500 * time.Millisecond, // Debounce rapid changes
		pending:  make(map[string]struct{}),
	}, nil
}

// Start begins watching for goal files. Files already present in the
// directory are submitted first.
func (gw *GoalWatcher) Start(ctx context.Context) {
	ctx, gw.cancel = context.WithCancel(ctx)

	gw.rescan()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-gw.watcher.Events:
				if !ok {
					return
				}
				gw.handleEvent(event)
			case err, ok := <-gw.watcher.Errors:
				if !ok {
					return
				}
				gw.log.Error("watch error", zap.Error(err))
			}
		}
	}()
}

// Stop stops watching for goal files
func (gw *GoalWatcher) Stop() {
	if gw.cancel != nil {
		gw.cancel()
	}
	gw.watcher.Close()
}

// SetDebounce sets the debounce duration for batching file changes
func (gw *GoalWatcher) SetDebounce(d time.Duration) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.debounce = d
}

// rescan enqueues goal files that were dropped before the watcher
// started
func (gw *GoalWatcher) rescan() {
	entries, err := os.ReadDir(gw.dir)
	if err != nil {
		gw.log.Error("drop directory scan failed", zap.Error(err))
		return
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(gw.dir, entry.Name())
		if !isGoalFile(path) {
			continue
		}
		gw.pending[path] = struct{}{}
	}
	if len(gw.pending) > 0 {
		gw.resetTimer()
	}
}

func (gw *GoalWatcher) handleEvent(event fsnotify.Event) {
	if !isGoalFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.pending[event.Name] = struct{}{}
	gw.resetTimer()
}

// resetTimer must be called with the mutex held
func (gw *GoalWatcher) resetTimer() {
	if gw.timer != nil {
		gw.timer.Stop()
	}
	gw.timer = time.AfterFunc(gw.debounce, gw.flush)
}

func (gw *GoalWatcher) flush() {
	gw.mu.Lock()
	pending := gw.pending
	gw.pending = make(map[string]struct{})
	gw.mu.Unlock()

	for path := range pending {
		goal, goalCtx, err := readGoalFile(path)
		if err != nil {
			gw.log.Error("goal file unreadable", zap.String("path", path), zap.Error(err))
			continue
		}
		if goal == "" {
			gw.log.Warn("goal file empty, skipping", zap.String("path", path))
			continue
		}

		if err := os.Rename(path, path+doneSuffix); err != nil {
			gw.log.Error("goal file rename failed", zap.String("path", path), zap.Error(err))
			continue
		}

		gw.log.Info("goal file submitted", zap.String("path", path), zap.String("goal", goal))
		if gw.callback != nil {
			gw.callback(path, goal, goalCtx)
		}
	}
}

// isGoalFile reports whether the path looks like an unprocessed goal
// file
func isGoalFile(path string) bool {
	if strings.HasSuffix(path, doneSuffix) {
		return false
	}
	ext := filepath.Ext(path)
	return ext == ".txt" || ext == ".md"
}

// readGoalFile splits a goal file into goal and context. The first
// non-empty line is the goal; everything after it is context.
func readGoalFile(path string) (goal, context string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		goal = trimmed
		context = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		break
	}
	return goal, context, nil
}
