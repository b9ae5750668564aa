// # internal/shared/util/match.go
package util

import (
	"path/filepath"

	"github.com/gobwas/glob"
)

// Matcher selects files by include and exclude globs. Patterns without a path
// separator are matched against the base name, the others against the
// slash-separated path relative to the walked root.
type Matcher struct {
	include []pattern
	exclude []pattern
}

type pattern struct {
	g       glob.Glob
	pathful bool
}

func NewMatcher(include, exclude []string) (*Matcher, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}
	return &Matcher{include: inc, exclude: exc}, nil
}

func compilePatterns(raw []string) ([]pattern, error) {
	out := make([]pattern, 0, len(raw))
	for _, p := range raw {
		pathful := IsPathPattern(p)
		if pathful {
			p = SlashPath(p)
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, pattern{g: g, pathful: pathful})
	}
	return out, nil
}

// Match reports whether rel, a path relative to a watched or walked root, is
// selected. An empty include list selects everything not excluded.
func (m *Matcher) Match(rel string) bool {
	rel = SlashPath(rel)
	base := filepath.Base(filepath.FromSlash(rel))
	for _, p := range m.exclude {
		if p.match(rel, base) {
			return false
		}
	}
	if len(m.include) == 0 {
		return true
	}
	for _, p := range m.include {
		if p.match(rel, base) {
			return true
		}
	}
	return false
}

func (p pattern) match(rel, base string) bool {
	if p.pathful {
		return p.g.Match(rel)
	}
	return p.g.Match(base)
}
