// # internal/core/watcher/watcher.go
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"docxref/internal/shared/observability"
	"docxref/internal/shared/util"
)

// Watcher reports batches of changed documentation files. Events are coalesced
// for the debounce period; a batch that exceeds the rerun limit is held back
// until the limiter admits it.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	matcher   *util.Matcher
	limiter   *util.Limiter
	ignored   []string
	onChange  func([]string)

	callbackMu sync.Mutex

	roots     []string
	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool
}

func NewWatcher(debounce time.Duration, matcher *util.Matcher, limiter *util.Limiter, onChange func([]string)) (*Watcher, error) {
	if onChange == nil || matcher == nil {
		return nil, os.ErrInvalid
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		matcher:   matcher,
		limiter:   limiter,
		onChange:  onChange,
		pending:   make(map[string]time.Time),
	}, nil
}

// Ignore drops events below the given directories, such as the snapshot store.
func (w *Watcher) Ignore(dirs ...string) {
	for _, dir := range dirs {
		if abs, err := filepath.Abs(dir); err == nil {
			w.ignored = append(w.ignored, abs)
		}
	}
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch registers the input roots. A root that is a file is watched through its
// directory.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			w.roots = append(w.roots, filepath.Dir(abs))
			if err := w.fsWatcher.Add(filepath.Dir(abs)); err != nil {
				return err
			}
			continue
		}
		w.roots = append(w.roots, abs)
		if err := w.watchRecursive(abs); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()
	w.resetTimerLocked()
}

func (w *Watcher) resetTimerLocked() {
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	if wait := w.limiter.Next(); wait > 0 {
		slog.Info("rerun rate limited, holding changes", "pending", len(w.pending), "retry_in", wait.Round(time.Millisecond))
		if !w.closed {
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(max(wait, w.debounce), w.flushChanges)
		}
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	sort.Strings(paths)
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) isIgnored(path string) bool {
	for _, dir := range w.ignored {
		if util.WithinDir(path, dir) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	if w.isIgnored(path) {
		return true
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	if w.isIgnored(path) {
		return true
	}
	return !w.matcher.Match(w.relative(path))
}

// relative returns path relative to the innermost watched root containing it.
func (w *Watcher) relative(path string) string {
	best := ""
	for _, root := range w.roots {
		if util.WithinDir(path, root) && len(root) > len(best) {
			best = root
		}
	}
	if best == "" {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(best, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}
