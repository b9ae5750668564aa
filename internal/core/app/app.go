// Package app wires the pipeline of a docxref run: scan the inputs, load the
// documents in parallel, resolve cross references, transcode, persist the run
// and build its report.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"docxref/internal/core/config"
	"docxref/internal/core/errors"
	"docxref/internal/data/store"
	"docxref/internal/engine/doxygen"
	"docxref/internal/engine/model"
	"docxref/internal/engine/registry"
	"docxref/internal/engine/resolver"
	"docxref/internal/engine/transcoder"
	"docxref/internal/shared/observability"
	"docxref/internal/shared/util"
	"docxref/internal/ui/report"
)

// Result is the outcome of one run.
type Result struct {
	Run    store.Run
	Report report.Data
	Driver *resolver.Driver
	Stored bool
}

type App struct {
	Config *config.Config

	loader  *doxygen.Loader
	matcher *util.Matcher
	store   *store.Store

	// Inputs replace the configured input paths when set.
	Inputs []string

	mu   sync.RWMutex
	last *Result
}

func New(cfg *config.Config) (*App, error) {
	matcher, err := util.NewMatcher(cfg.Input.Include, cfg.Input.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "compile input patterns")
	}

	a := &App{
		Config:  cfg,
		loader:  doxygen.NewLoader(doxygen.Options{ForceLanguage: cfg.Input.ForceLanguage}),
		matcher: matcher,
	}

	if cfg.Store.Enabled {
		s, err := store.Open(cfg.StorePath())
		if err != nil {
			return nil, err
		}
		a.store = s
	}
	return a, nil
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Store returns the snapshot store, or nil when persistence is disabled.
func (a *App) Store() *store.Store {
	return a.store
}

// Last returns the result of the most recent successful run.
func (a *App) Last() *Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Run executes the whole pipeline once. Documents that fail to load are
// reported and skipped; only cancellation and store failures abort a run.
func (a *App) Run(ctx context.Context) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()

	started := time.Now().UTC()
	res, err := a.run(ctx, started)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
	}
	observability.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.last = res
	a.mu.Unlock()

	span.SetAttributes(
		attribute.Int("documents", res.Run.Documents),
		attribute.Int("elements", res.Run.Elements),
		attribute.Int("unresolved", res.Run.Unresolved),
	)
	slog.Info("run finished",
		"run_id", res.Run.ID,
		"documents", res.Run.Documents,
		"elements", res.Run.Elements,
		"resolved", res.Run.Resolved,
		"unresolved", res.Run.Unresolved,
		"duration", res.Run.Duration,
		"heap_mb", util.HeapAllocMB(),
	)
	return res, nil
}

func (a *App) run(ctx context.Context, started time.Time) (*Result, error) {
	paths, err := ScanDirectories(a.Config.InputPaths(a.Inputs), a.matcher)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		slog.Warn("no documentation files found", "inputs", a.Config.InputPaths(a.Inputs))
	}

	driver := resolver.NewDriver(nil)
	failed, err := a.loader.LoadAll(ctx, paths, a.Config.Parse.Workers, driver)
	if err != nil {
		return nil, err
	}

	progress := resolver.Progresses{&resolver.LogProgress{Every: 5000}, resolver.MetricsProgress{}}
	stats := driver.ResolveReferences(ctx, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transcoded, err := a.transcode(driver.Registry())
	if err != nil {
		return nil, err
	}

	elements := driver.Registry().Elements()
	unresolved := driver.Unresolved()
	res := &Result{
		Driver: driver,
		Run: store.Run{
			ID:              store.NewRunID(),
			Started:         started,
			Documents:       len(paths),
			FailedDocuments: len(failed),
			Elements:        len(elements),
			Resolved:        stats.Resolved(),
			Ambiguous:       stats.Ambiguous,
			Unresolved:      len(unresolved),
		},
	}
	res.Run.Duration = time.Since(started)

	if a.store != nil {
		run, err := a.store.SaveRun(ctx, res.Run, elements, unresolved)
		if err != nil {
			return nil, err
		}
		res.Run = run
		res.Stored = true
		if n, err := a.store.PruneRuns(ctx, a.Config.Store.KeepRuns); err != nil {
			slog.Warn("failed to prune stored runs", "error", err)
		} else if n > 0 {
			slog.Debug("pruned stored runs", "deleted", n)
		}
	}

	res.Report = report.Data{
		RunID:       res.Run.ID,
		GeneratedAt: started,
		Duration:    res.Run.Duration,
		Documents:   len(paths),
		Failures:    failures(failed),
		Languages:   report.CountLanguages(elements),
		Stats:       stats,
		Unresolved:  report.GroupUnresolved(unresolved),
		Ambiguities: driver.Ambiguities(),
		Transcoded:  transcoded,
	}
	return res, nil
}

// transcode derives the configured target languages from every registered
// element of the source language. Existing targets are reused.
func (a *App) transcode(reg *registry.Registry) ([]report.Transcoded, error) {
	var out []report.Transcoded
	for _, pair := range a.Config.Transcode.Pairs {
		t, err := transcoder.New(pair.Source, pair.Target, reg)
		if err != nil {
			return nil, err
		}
		before := reg.Len()
		for _, e := range reg.Elements() {
			if e.Base().Language != pair.Source {
				continue
			}
			if err := transcodeElement(t, e); err != nil {
				slog.Warn("failed to transcode element", "id", e.Base().ID, "target", pair.Target, "error", err)
			}
		}
		out = append(out, report.Transcoded{Source: pair.Source, Target: pair.Target, Elements: reg.Len() - before})
	}
	return out, nil
}

func transcodeElement(t *transcoder.Transcoder, e model.Element) error {
	switch v := e.(type) {
	case *model.Compound:
		_, err := t.Compound(v)
		return err
	case *model.Member:
		_, err := t.Member(v)
		return err
	case *model.EnumValue:
		_, err := t.EnumValue(v)
		return err
	}
	return fmt.Errorf("unsupported element %T", e)
}

func failures(errs []doxygen.DocumentError) []report.Failure {
	out := make([]report.Failure, 0, len(errs))
	for _, e := range errs {
		out = append(out, report.Failure{Path: filepath.ToSlash(e.Path), Error: e.Err.Error()})
	}
	return out
}
