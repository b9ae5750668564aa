package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands every valid
// reload to onReload. Saves that leave the content unchanged are ignored.
type Watcher struct {
	path     string
	onReload func(*Config)

	mu  sync.Mutex
	sum []byte

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewWatcher(path string, onReload func(*Config)) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		onReload: onReload,
		stop:     make(chan struct{}),
	}
}

// Start watches the directory holding the file, so editors that save by
// renaming a temporary file over it are seen too.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}
	w.sum, _ = fileSum(w.path)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fw.Close()
		slog.Debug("watching config file", "path", w.path)

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDelay, w.reload)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "path", w.path, "error", err)
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop is safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *Watcher) reload() {
	sum, err := fileSum(w.path)
	if err != nil {
		slog.Warn("config file unreadable", "path", w.path, "error", err)
		return
	}
	w.mu.Lock()
	unchanged := bytes.Equal(sum, w.sum)
	w.sum = sum
	w.mu.Unlock()
	if unchanged {
		return
	}

	cfg, err := Load(w.path)
	if err == nil {
		ApplyEnvOverrides(cfg)
		err = Validate(cfg)
	}
	if err != nil {
		slog.Warn("ignoring config change", "path", w.path, "error", err)
		return
	}
	slog.Info("config reloaded", "path", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

func fileSum(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}
