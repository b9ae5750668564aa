package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"docxref/internal/shared/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// Summary renders a terminal summary. At most maxListed unresolved names and
// ambiguities are listed; zero lists everything.
func Summary(d Data, maxListed int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("docxref run " + d.RunID))
	b.WriteString("\n")

	row := func(label string, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	docs := fmt.Sprintf("%d", d.Documents)
	if len(d.Failures) > 0 {
		docs += " " + errorStyle.Render(fmt.Sprintf("(%d failed)", len(d.Failures)))
	}
	row("documents", docs)

	langs := make([]string, 0, len(d.Languages))
	for _, lang := range util.SortedKeys(d.Languages) {
		langs = append(langs, fmt.Sprintf("%s=%d", lang, d.Languages[lang]))
	}
	row("elements", fmt.Sprintf("%d  %s", d.TotalElements(), strings.Join(langs, " ")))

	resolved := successStyle.Render(fmt.Sprintf("%d", d.Stats.Resolved()))
	row("resolved", fmt.Sprintf("%s of %d (exact %d, partial %d)", resolved, d.Stats.Processed, d.Stats.Exact, d.Stats.Partial))

	unresolved := fmt.Sprintf("%d", d.Stats.Unresolved)
	if d.Stats.Unresolved > 0 {
		unresolved = warnStyle.Render(unresolved)
	}
	row("unresolved", unresolved)
	if d.Stats.Ambiguous > 0 {
		row("ambiguous", warnStyle.Render(fmt.Sprintf("%d", d.Stats.Ambiguous)))
	}
	for _, t := range d.Transcoded {
		row("transcoded", fmt.Sprintf("%s -> %s: %d", t.Source, t.Target, t.Elements))
	}

	for _, f := range d.Failures {
		b.WriteString(errorStyle.Render("  ✗ "))
		b.WriteString(f.Path + ": " + f.Error + "\n")
	}

	if len(d.Unresolved) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Unresolved names"))
		b.WriteString("\n")
		rows, more := limit(d.Unresolved, maxListed)
		for _, u := range rows {
			b.WriteString(fmt.Sprintf("  %-6s %s %s\n", u.Language, u.Name, labelStyle.Render(fmt.Sprintf("×%d", u.Count))))
		}
		if more > 0 {
			b.WriteString(statusStyle.Render(fmt.Sprintf("  … %d more", more)))
			b.WriteString("\n")
		}
	}

	if len(d.Ambiguities) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Ambiguous references"))
		b.WriteString("\n")
		rows, more := limit(d.Ambiguities, maxListed)
		for _, a := range rows {
			b.WriteString(fmt.Sprintf("  %-6s %s: %s\n", a.Language, a.Name, strings.Join(a.Candidates, ", ")))
		}
		if more > 0 {
			b.WriteString(statusStyle.Render(fmt.Sprintf("  … %d more", more)))
			b.WriteString("\n")
		}
	}

	b.WriteString(statusStyle.Render(fmt.Sprintf("finished in %s", d.Duration.Round(time.Millisecond))))
	b.WriteString("\n")
	return b.String()
}
