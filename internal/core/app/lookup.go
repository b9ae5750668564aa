package app

import (
	"context"

	"docxref/internal/core/errors"
	"docxref/internal/data/store"
)

// Lookup finds elements by short or full name in the latest stored run.
func (a *App) Lookup(ctx context.Context, name string) (store.Run, []store.ElementRecord, error) {
	if a.store == nil {
		return store.Run{}, nil, errors.New(errors.CodeValidationError, "lookup needs store.enabled=true")
	}
	run, err := a.store.LatestRun(ctx)
	if err != nil {
		return store.Run{}, nil, err
	}
	found, err := a.store.FindElements(ctx, run.ID, name)
	if err != nil {
		return run, nil, err
	}
	if len(found) == 0 {
		return run, nil, errors.AddContext(errors.Newf(errors.CodeNotFound, "no element named %q", name), errors.CtxSymbol, name)
	}
	return run, found, nil
}

// History lists the most recent stored runs.
func (a *App) History(ctx context.Context, limit int) ([]store.Run, error) {
	if a.store == nil {
		return nil, errors.New(errors.CodeValidationError, "history needs store.enabled=true")
	}
	return a.store.Runs(ctx, limit)
}
