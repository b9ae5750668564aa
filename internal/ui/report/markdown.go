package report

import (
	"fmt"
	"strings"
	"time"

	"docxref/internal/shared/util"
)

type MarkdownOptions struct {
	Title string
	// Tables longer than this are folded into a <details> block. Zero never folds.
	CollapseAfter int
	MaxListed     int
}

func Markdown(d Data, opts MarkdownOptions) string {
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now().UTC()
	}
	title := opts.Title
	if title == "" {
		title = "Documentation Cross-Reference Report"
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("run_id: " + d.RunID + "\n")
	b.WriteString("generated_at: " + d.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("---\n\n")
	b.WriteString("# " + title + "\n\n")

	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Documents | %d |\n", d.Documents))
	b.WriteString(fmt.Sprintf("| Failed Documents | %d |\n", len(d.Failures)))
	b.WriteString(fmt.Sprintf("| Elements | %d |\n", d.TotalElements()))
	for _, lang := range util.SortedKeys(d.Languages) {
		b.WriteString(fmt.Sprintf("| Elements (%s) | %d |\n", lang, d.Languages[lang]))
	}
	b.WriteString(fmt.Sprintf("| References | %d |\n", d.Stats.Processed))
	b.WriteString(fmt.Sprintf("| Resolved | %d |\n", d.Stats.Resolved()))
	b.WriteString(fmt.Sprintf("| Ambiguous | %d |\n", d.Stats.Ambiguous))
	b.WriteString(fmt.Sprintf("| Unresolved | %d |\n\n", d.Stats.Unresolved))

	if len(d.Transcoded) > 0 {
		b.WriteString("## Transcoding\n")
		b.WriteString("| Source | Target | Elements |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, t := range d.Transcoded {
			b.WriteString(fmt.Sprintf("| %s | %s | %d |\n", t.Source, t.Target, t.Elements))
		}
		b.WriteString("\n")
	}

	if len(d.Failures) > 0 {
		b.WriteString("## Failed Documents\n")
		rows := make([]string, 0, len(d.Failures))
		for _, f := range d.Failures {
			rows = append(rows, fmt.Sprintf("| `%s` | %s |\n", f.Path, escapeCell(f.Error)))
		}
		writeTable(&b, "Failure details", opts.CollapseAfter, []string{"| Document | Error |\n", "| --- | --- |\n"}, rows)
	}

	b.WriteString("## Unresolved References\n")
	if len(d.Unresolved) == 0 {
		b.WriteString("All references were resolved.\n\n")
	} else {
		listed, more := limit(d.Unresolved, opts.MaxListed)
		rows := make([]string, 0, len(listed))
		for _, u := range listed {
			rows = append(rows, fmt.Sprintf("| `%s` | %s | %d |\n", u.Name, u.Language, u.Count))
		}
		writeTable(&b, "Unresolved names", opts.CollapseAfter, []string{"| Name | Language | Occurrences |\n", "| --- | --- | --- |\n"}, rows)
		if more > 0 {
			b.WriteString(fmt.Sprintf("_%d more not listed._\n\n", more))
		}
	}

	if len(d.Ambiguities) > 0 {
		b.WriteString("## Ambiguous References\n")
		listed, more := limit(d.Ambiguities, opts.MaxListed)
		rows := make([]string, 0, len(listed))
		for _, a := range listed {
			rows = append(rows, fmt.Sprintf("| `%s` | %s | %s |\n", a.Name, a.Language, "`"+strings.Join(a.Candidates, "`, `")+"`"))
		}
		writeTable(&b, "Ambiguities", opts.CollapseAfter, []string{"| Name | Language | Candidates |\n", "| --- | --- | --- |\n"}, rows)
		if more > 0 {
			b.WriteString(fmt.Sprintf("_%d more not listed._\n\n", more))
		}
	}

	return b.String()
}

func writeTable(b *strings.Builder, summary string, collapseAfter int, header, rows []string) {
	collapse := collapseAfter > 0 && len(rows) > collapseAfter
	if collapse {
		b.WriteString("<details>\n")
		b.WriteString("<summary>")
		b.WriteString(summary)
		b.WriteString("</summary>\n\n")
	}
	for _, line := range header {
		b.WriteString(line)
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	b.WriteString("\n")
	if collapse {
		b.WriteString("</details>\n\n")
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// WriteMarkdown renders the report and writes it to path, creating directories.
func WriteMarkdown(path string, d Data, opts MarkdownOptions) error {
	return util.WriteFileAtomic(path, Markdown(d, opts), 0o644)
}
