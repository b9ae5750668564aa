package report

import (
	"fmt"
	"strings"
)

// UnresolvedTSV lists every unresolved name, one per line.
func UnresolvedTSV(d Data) string {
	var buf strings.Builder
	buf.WriteString("Name\tLanguage\tOccurrences\n")
	for _, u := range d.Unresolved {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\n", u.Name, u.Language, u.Count))
	}
	return buf.String()
}
