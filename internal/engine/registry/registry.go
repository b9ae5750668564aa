// # internal/engine/registry/registry.go

// Package registry stores documented API elements and finds them by id or name.
//
// Elements keep their insertion order. Duplicate names are valid: lookups
// narrow candidates with filters and report ambiguity instead of guessing.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"docxref/internal/core/errors"
	"docxref/internal/engine/model"
)

// NamespaceSeparators are tried in order when splitting a qualified name.
var NamespaceSeparators = []string{"::", "."}

// AmbiguousLookupError reports that several elements match a query.
type AmbiguousLookupError struct {
	Name       string
	Candidates []model.Element
}

func (e *AmbiguousLookupError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, c.Base().ID)
	}
	return fmt.Sprintf("ambiguous lookup for %q: %d candidates [%s]", e.Name, len(e.Candidates), strings.Join(names, ", "))
}

func (e *AmbiguousLookupError) Unwrap() error {
	return &errors.DomainError{Code: errors.CodeAmbiguous, Message: "ambiguous lookup"}
}

// FindOptions narrows a lookup. Empty fields do not filter.
type FindOptions struct {
	Namespace string
	Kind      string
	Lang      string
	// TargetID short-circuits all other criteria.
	TargetID string
	// AllowOverloads returns the first element of an overload set instead of
	// reporting ambiguity.
	AllowOverloads bool
}

type Registry struct {
	mu       sync.RWMutex
	elements []model.Element
	byID     map[string]model.Element
	byName   map[string][]model.Element
}

func New() *Registry {
	return &Registry{
		byID:   make(map[string]model.Element),
		byName: make(map[string][]model.Element),
	}
}

// Append registers an element. Elements without id or name cannot be found and
// are rejected.
func (r *Registry) Append(e model.Element) error {
	base := e.Base()
	if base.ID == "" || base.Name == "" {
		err := &errors.DomainError{Code: errors.CodeValidationError, Message: "element requires id and name"}
		return err.WithContext(errors.CtxSymbol, base.FullName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements = append(r.elements, e)
	r.byID[base.ID] = e
	r.byName[base.Name] = append(r.byName[base.Name], e)
	return nil
}

// Elements returns all elements in insertion order.
func (r *Registry) Elements() []model.Element {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Element, len(r.elements))
	copy(out, r.elements)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.elements)
}

// ByID returns the element registered under id.
func (r *Registry) ByID(id string) (model.Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// Find looks up an element. name may carry a parameter type list, as in
// "Foo::bar(int, const std::string&)", to select one overload. It returns nil
// without error when nothing matches and an *AmbiguousLookupError when several
// elements match.
func (r *Registry) Find(name string, opts FindOptions) (model.Element, error) {
	if opts.TargetID != "" {
		e, _ := r.ByID(opts.TargetID)
		return e, nil
	}
	if name == "" {
		return nil, nil
	}

	params := newParameterTypeMatcher(name)
	if params.applies() {
		name = params.name
	}

	r.mu.RLock()
	candidates := r.byName[ShortName(name)]
	r.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, nil
	}

	filter := combine(
		newNameFilter(name, opts.Namespace, false),
		kindFilter(opts.Kind),
		langFilter(opts.Lang),
		params,
	)

	var matches []model.Element
	for _, c := range candidates {
		if filter.match(c) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}

	if opts.Namespace != "" {
		if exact := filterElements(matches, newNameFilter(name, opts.Namespace, true)); len(exact) == 1 {
			return exact[0], nil
		}
		if global := filterElements(matches, newNameFilter(name, "", false)); len(global) == 1 {
			return global[0], nil
		}
	}

	if opts.AllowOverloads && sameOverloadSet(matches) {
		return matches[0], nil
	}
	return nil, &AmbiguousLookupError{Name: name, Candidates: matches}
}

func sameOverloadSet(matches []model.Element) bool {
	first := matches[0].Base()
	for _, m := range matches[1:] {
		b := m.Base()
		if b.FullName != first.FullName || b.Kind != first.Kind || b.Language != first.Language {
			return false
		}
	}
	return true
}

func filterElements(elements []model.Element, f elementFilter) []model.Element {
	var out []model.Element
	for _, e := range elements {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// ShortName returns the last segment of a qualified name.
func ShortName(name string) string {
	for _, sep := range NamespaceSeparators {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			return name[idx+len(sep):]
		}
	}
	return name
}

// SplitNamespaces splits a qualified name at the first separator style it
// contains, dropping empty segments.
func SplitNamespaces(name string) []string {
	for _, sep := range NamespaceSeparators {
		if !strings.Contains(name, sep) {
			continue
		}
		var out []string
		for _, part := range strings.Split(name, sep) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return []string{name}
}
