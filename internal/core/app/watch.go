package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"docxref/internal/core/watcher"
	"docxref/internal/shared/util"
)

// Watch runs the pipeline once and again for every batch of changed files
// until ctx is cancelled. onResult receives each successful run.
func (a *App) Watch(ctx context.Context, onResult func(*Result)) error {
	first, err := a.Run(ctx)
	if err != nil {
		return err
	}
	if onResult != nil {
		onResult(first)
	}

	rerun := make(chan []string, 1)
	limiter := util.PerMinute(a.Config.Watch.MaxRerunsPerMinute, 1)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.matcher, limiter, func(paths []string) {
		select {
		case rerun <- paths:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if a.store != nil {
		w.Ignore(filepath.Dir(a.store.Path()))
	}
	if err := w.Watch(a.Config.InputPaths(a.Inputs)); err != nil {
		return err
	}
	slog.Info("watching for changes", "inputs", a.Config.InputPaths(a.Inputs), "debounce", a.Config.Watch.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-rerun:
			slog.Info("documentation changed, rerunning", "files", len(paths))
			res, err := a.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("rerun failed", "error", err)
				continue
			}
			if onResult != nil {
				onResult(res)
			}
		}
	}
}
