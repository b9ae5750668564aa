package doxygen

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"docxref/internal/engine/model"
)

// DocumentError reports a document that could not be loaded.
type DocumentError struct {
	Path string
	Err  error
}

// LoadAll loads documents concurrently with at most workers parsers. Every
// document is collected separately and replayed into sink in input order, so the
// registry and the unresolved queue do not depend on scheduling. Failing
// documents are skipped and returned; they never abort the others.
func (l *Loader) LoadAll(ctx context.Context, paths []string, workers int, sink Sink) ([]DocumentError, error) {
	if workers < 1 {
		workers = 1
	}
	collected := make([]*collector, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := &collector{}
			if err := l.LoadFile(gctx, path, c); err != nil {
				failures[i] = err
				return nil
			}
			collected[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []DocumentError
	for i, c := range collected {
		if failures[i] != nil {
			slog.Warn("skipping document", "path", paths[i], "error", failures[i])
			errs = append(errs, DocumentError{Path: paths[i], Err: failures[i]})
			continue
		}
		c.replay(sink)
	}
	return errs, nil
}

type event struct {
	element    model.Element
	unresolved *model.TypeRef
	parent     *model.Compound
	inner      *model.InnerTypeRef
}

// collector records the calls of one document in order.
type collector struct {
	events []event
}

func (c *collector) Register(e model.Element) error {
	c.events = append(c.events, event{element: e})
	return nil
}

func (c *collector) UnresolvedRef(ref *model.TypeRef) {
	c.events = append(c.events, event{unresolved: ref})
}

func (c *collector) InnerTypeRef(parent *model.Compound, ref *model.InnerTypeRef) {
	c.events = append(c.events, event{parent: parent, inner: ref})
}

func (c *collector) replay(sink Sink) {
	for _, ev := range c.events {
		switch {
		case ev.element != nil:
			if err := sink.Register(ev.element); err != nil {
				slog.Warn("failed to register element", "id", ev.element.Base().ID, "error", err)
			}
		case ev.unresolved != nil:
			sink.UnresolvedRef(ev.unresolved)
		case ev.inner != nil:
			sink.InnerTypeRef(ev.parent, ev.inner)
		}
	}
}
