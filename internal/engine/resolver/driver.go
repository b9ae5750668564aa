// # internal/engine/resolver/driver.go

// Package resolver links type references to the documented elements they name.
//
// Loaders register elements and queue unresolved references on a Driver while
// parsing. Once every document of a run is loaded, ResolveReferences makes one
// pass over the queues. References that stay unresolved are kept so they can be
// reported or retried after more documents are registered.
package resolver

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"docxref/internal/engine/model"
	"docxref/internal/engine/registry"
	"docxref/internal/engine/traits"
	"docxref/internal/shared/observability"
)

// Outcome describes how a reference was resolved.
type Outcome string

const (
	OutcomeExact      Outcome = "exact"
	OutcomePartial    Outcome = "partial"
	OutcomeAmbiguous  Outcome = "ambiguous"
	OutcomeUnresolved Outcome = "unresolved"
)

// Ambiguity records a reference whose name matched several elements.
type Ambiguity struct {
	Name       string
	Language   string
	Candidates []string
}

// Stats summarizes one resolution pass.
type Stats struct {
	Processed  int
	Exact      int
	Partial    int
	Ambiguous  int
	Unresolved int
	Duration   time.Duration
}

func (s Stats) Resolved() int { return s.Exact + s.Partial }

type innerRef struct {
	parent *model.Compound
	ref    *model.InnerTypeRef
}

// Driver owns the registry of one run together with its resolution queues.
type Driver struct {
	mu          sync.Mutex
	registry    *registry.Registry
	unresolved  []*model.TypeRef
	inner       []innerRef
	ambiguities []Ambiguity
}

// NewDriver creates a driver on reg, or on a new empty registry when reg is nil.
func NewDriver(reg *registry.Registry) *Driver {
	if reg == nil {
		reg = registry.New()
	}
	return &Driver{registry: reg}
}

func (d *Driver) Registry() *registry.Registry {
	return d.registry
}

// Register adds a documented element to the registry.
func (d *Driver) Register(e model.Element) error {
	if err := d.registry.Append(e); err != nil {
		return err
	}
	base := e.Base()
	observability.ElementsRegisteredTotal.WithLabelValues(base.Language, base.Kind).Inc()
	return nil
}

// UnresolvedRef queues a type reference for resolution.
func (d *Driver) UnresolvedRef(ref *model.TypeRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unresolved = append(d.unresolved, ref)
	observability.UnresolvedQueuedTotal.WithLabelValues(ref.Language).Inc()
}

// InnerTypeRef queues a nested compound declared by parent but documented elsewhere.
func (d *Driver) InnerTypeRef(parent *model.Compound, ref *model.InnerTypeRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inner = append(d.inner, innerRef{parent: parent, ref: ref})
}

// ResolveReferences drains both queues once. It must run after all documents
// participating in the pass are registered. Progress is optional.
func (d *Driver) ResolveReferences(ctx context.Context, progress Progress) Stats {
	_, span := observability.Tracer.Start(ctx, "resolver.ResolveReferences")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	started := time.Now()
	var stats Stats
	d.ambiguities = nil
	if progress != nil {
		progress.SetTotal(len(d.unresolved) + len(d.inner))
	}

	count := func(outcome Outcome) {
		stats.Processed++
		switch outcome {
		case OutcomeExact:
			stats.Exact++
		case OutcomePartial:
			stats.Partial++
		case OutcomeAmbiguous:
			stats.Ambiguous++
		default:
			stats.Unresolved++
		}
		observability.ResolutionsTotal.WithLabelValues(string(outcome)).Inc()
		if progress != nil {
			progress.Increment()
		}
	}

	var stillUnresolved []*model.TypeRef
	for _, ref := range d.unresolved {
		target, outcome := d.resolve(ref)
		count(outcome)
		if target == nil {
			stillUnresolved = append(stillUnresolved, ref)
			continue
		}
		ref.Resolve(target)
	}

	var stillInner []innerRef
	for _, entry := range d.inner {
		target, outcome := d.resolve(&entry.ref.TypeRef)
		compound, ok := target.(*model.Compound)
		if target != nil && !ok {
			slog.Debug("inner type reference does not name a compound", "name", entry.ref.Name, "target", target.Base().ID)
			outcome = OutcomeUnresolved
		}
		count(outcome)
		if !ok {
			stillInner = append(stillInner, entry)
			continue
		}
		if entry.ref.Prot != "" {
			compound.Prot = entry.ref.Prot
		}
		entry.ref.Resolve(compound)
		entry.ref.Target = compound
	}

	d.unresolved = stillUnresolved
	d.inner = stillInner
	stats.Duration = time.Since(started)
	observability.ResolutionDuration.Observe(stats.Duration.Seconds())

	span.SetAttributes(
		attribute.Int("docxref.resolve.processed", stats.Processed),
		attribute.Int("docxref.resolve.resolved", stats.Resolved()),
		attribute.Int("docxref.resolve.unresolved", stats.Unresolved+stats.Ambiguous),
	)
	slog.Debug("resolved references", "resolved", stats.Resolved(), "still_unresolved", len(d.unresolved)+len(d.inner))
	return stats
}

// Resolve finds the target of a single reference without touching the queues.
func (d *Driver) Resolve(ref *model.TypeRef) (model.Element, Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolve(ref)
}

func (d *Driver) resolve(ref *model.TypeRef) (model.Element, Outcome) {
	target, err := d.registry.Find(ref.Name, registry.FindOptions{
		TargetID:  ref.ID,
		Lang:      ref.Language,
		Namespace: ref.Namespace,
	})
	var ambiguous *registry.AmbiguousLookupError
	switch {
	case err == nil && target != nil:
		return target, OutcomeExact
	case err != nil && !stderrors.As(err, &ambiguous):
		slog.Warn("reference lookup failed", "name", ref.Name, "error", err)
		return nil, OutcomeUnresolved
	}

	sep := partialSeparator(ref.Language)
	var matches []model.Element
	for _, e := range d.registry.Elements() {
		if isPartialMatch(e.Base(), ref.Name, sep) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return nil, OutcomeUnresolved
	case 1:
		return matches[0], OutcomePartial
	}

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, m.Base().FullName)
	}
	slog.Debug("multiple partial matches", "name", ref.Name, "candidates", candidates)
	d.ambiguities = append(d.ambiguities, Ambiguity{Name: ref.Name, Language: ref.Language, Candidates: candidates})
	return nil, OutcomeAmbiguous
}

// partialSeparator is the namespace separator of the referencing language,
// "::" when the language is unknown.
func partialSeparator(lang string) string {
	if t, ok := traits.Lookup(lang); ok && t.NamespaceSeparator != "" {
		return t.NamespaceSeparator
	}
	return "::"
}

// isPartialMatch reports whether name is the last qualified segment of the
// element's full name.
func isPartialMatch(e *model.ReferableElement, name, sep string) bool {
	if e.Name == "" || name == "" {
		return false
	}
	return strings.HasSuffix(e.FullName, sep+name)
}

// Unresolved returns the references still waiting for a target.
func (d *Driver) Unresolved() []*model.TypeRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*model.TypeRef, 0, len(d.unresolved)+len(d.inner))
	out = append(out, d.unresolved...)
	for _, entry := range d.inner {
		out = append(out, &entry.ref.TypeRef)
	}
	return out
}

// UnresolvedNames returns the sorted distinct names of unresolved references.
func (d *Driver) UnresolvedNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, ref := range d.Unresolved() {
		if !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Ambiguities returns the partial-match ambiguities of the last pass.
func (d *Driver) Ambiguities() []Ambiguity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Ambiguity(nil), d.ambiguities...)
}
