package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxref/internal/engine/model"
	"docxref/internal/engine/resolver"
)

func sampleData() Data {
	return Data{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
		Duration:    1234 * time.Millisecond,
		Documents:   3,
		Failures:    []Failure{{Path: "broken.xml", Error: "[PARSE_ERROR] bad | xml"}},
		Languages:   map[string]int{"objc": 4, "cpp": 6, "swift": 4},
		Stats:       resolver.Stats{Processed: 10, Exact: 6, Partial: 1, Ambiguous: 1, Unresolved: 3},
		Unresolved: []Unresolved{
			{Name: "Vector", Language: "cpp", Count: 2},
			{Name: "NSData", Language: "objc", Count: 1},
		},
		Ambiguities: []resolver.Ambiguity{{Name: "Point", Language: "cpp", Candidates: []string{"a::Point", "b::Point"}}},
		Transcoded:  []Transcoded{{Source: "objc", Target: "swift", Elements: 4}},
	}
}

func TestGroupUnresolved(t *testing.T) {
	refs := []*model.TypeRef{
		{Name: "Vector", Language: "cpp"},
		{Name: "Matrix", Language: "cpp"},
		{Name: "Vector", Language: "cpp"},
		{Name: "Vector", Language: "java"},
	}
	assert.Equal(t, []Unresolved{
		{Name: "Vector", Language: "cpp", Count: 2},
		{Name: "Matrix", Language: "cpp", Count: 1},
		{Name: "Vector", Language: "java", Count: 1},
	}, GroupUnresolved(refs))
	assert.Empty(t, GroupUnresolved(nil))
}

func TestCountLanguages(t *testing.T) {
	elements := []model.Element{
		&model.Compound{ReferableElement: model.ReferableElement{ID: "cpp-a", Language: "cpp"}},
		&model.Member{ReferableElement: model.ReferableElement{ID: "cpp-a_1", Language: "cpp"}},
		&model.Compound{ReferableElement: model.ReferableElement{ID: "java-b", Language: "java"}},
	}
	got := CountLanguages(elements)
	assert.Equal(t, map[string]int{"cpp": 2, "java": 1}, got)
	assert.Equal(t, 3, Data{Languages: got}.TotalElements())
}

func TestSummary(t *testing.T) {
	out := Summary(sampleData(), 1)

	assert.Contains(t, out, "docxref run run-1")
	assert.Contains(t, out, "(1 failed)")
	assert.Contains(t, out, "14  cpp=6 objc=4 swift=4")
	assert.Contains(t, out, "of 10 (exact 6, partial 1)")
	assert.Contains(t, out, "objc -> swift: 4")
	assert.Contains(t, out, "Vector")
	assert.NotContains(t, out, "NSData")
	assert.Contains(t, out, "1 more")
	assert.Contains(t, out, "Point: a::Point, b::Point")
	assert.Contains(t, out, "finished in 1.234s")
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleData(), MarkdownOptions{MaxListed: 10})

	assert.True(t, strings.HasPrefix(out, "---\nrun_id: run-1\ngenerated_at: 2026-04-02T08:00:00Z\n---\n"))
	assert.Contains(t, out, "| Elements | 14 |\n")
	assert.Contains(t, out, "| Elements (cpp) | 6 |\n")
	assert.Contains(t, out, "| Resolved | 7 |\n")
	assert.Contains(t, out, "| objc | swift | 4 |\n")
	assert.Contains(t, out, "| `broken.xml` | [PARSE_ERROR] bad \\| xml |\n")
	assert.Contains(t, out, "| `Vector` | cpp | 2 |\n")
	assert.Contains(t, out, "| `Point` | cpp | `a::Point`, `b::Point` |\n")
	assert.NotContains(t, out, "<details>")
}

func TestMarkdown_CollapsesAndLimits(t *testing.T) {
	d := sampleData()
	out := Markdown(d, MarkdownOptions{CollapseAfter: 1, MaxListed: 5})
	assert.Contains(t, out, "<summary>Unresolved names</summary>")

	out = Markdown(d, MarkdownOptions{MaxListed: 1})
	assert.Contains(t, out, "_1 more not listed._")

	d.Unresolved = nil
	assert.Contains(t, Markdown(d, MarkdownOptions{}), "All references were resolved.")
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.md")
	require.NoError(t, WriteMarkdown(path, sampleData(), MarkdownOptions{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Documentation Cross-Reference Report")
}

func TestUnresolvedTSV(t *testing.T) {
	assert.Equal(t, "Name\tLanguage\tOccurrences\nVector\tcpp\t2\nNSData\tobjc\t1\n", UnresolvedTSV(sampleData()))
}
