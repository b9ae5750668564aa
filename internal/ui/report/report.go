// Package report renders the outcome of a pipeline run for people: a styled
// terminal summary, a Markdown document and a TSV listing of unresolved names.
package report

import (
	"sort"
	"time"

	"docxref/internal/engine/model"
	"docxref/internal/engine/resolver"
)

type Data struct {
	RunID       string
	GeneratedAt time.Time
	Duration    time.Duration

	Documents int
	Failures  []Failure

	// Elements per language tag, transcoded languages included.
	Languages map[string]int

	Stats       resolver.Stats
	Unresolved  []Unresolved
	Ambiguities []resolver.Ambiguity
	Transcoded  []Transcoded
}

type Failure struct {
	Path  string
	Error string
}

// Unresolved groups the references that stayed unresolved under one name.
type Unresolved struct {
	Name     string
	Language string
	Count    int
}

type Transcoded struct {
	Source   string
	Target   string
	Elements int
}

// GroupUnresolved counts references by name and language, most frequent first.
func GroupUnresolved(refs []*model.TypeRef) []Unresolved {
	type key struct{ name, lang string }
	counts := make(map[key]int)
	for _, ref := range refs {
		counts[key{ref.Name, ref.Language}]++
	}
	out := make([]Unresolved, 0, len(counts))
	for k, n := range counts {
		out = append(out, Unresolved{Name: k.name, Language: k.lang, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Language < out[j].Language
	})
	return out
}

// CountLanguages tallies registered elements per language.
func CountLanguages(elements []model.Element) map[string]int {
	out := make(map[string]int)
	for _, e := range elements {
		out[e.Base().Language]++
	}
	return out
}

func (d Data) TotalElements() int {
	n := 0
	for _, c := range d.Languages {
		n += c
	}
	return n
}

func limit[T any](rows []T, max int) ([]T, int) {
	if max <= 0 || len(rows) <= max {
		return rows, 0
	}
	return rows[:max], len(rows) - max
}
