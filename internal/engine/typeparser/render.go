package typeparser

import (
	"strings"

	"docxref/internal/engine/model"
	"docxref/internal/engine/traits"
)

// Render rebuilds declaration text from a type tree. Callables render as the
// return type followed by the parenthesized parameter list.
func Render(ref *model.TypeRef) string {
	if ref == nil {
		return ""
	}
	var b strings.Builder
	render(&b, ref)
	return b.String()
}

func render(b *strings.Builder, ref *model.TypeRef) {
	start, end, argsStart, argsEnd := delimiters(ref.Language)
	if ref.IsClosure() {
		render(b, ref.Returns)
		b.WriteString(argsStart)
		for i, arg := range ref.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if arg.Type != nil {
				render(b, arg.Type)
			}
			if arg.Name != "" {
				if arg.Type != nil {
					b.WriteByte(' ')
				}
				b.WriteString(arg.Name)
			}
		}
		b.WriteString(argsEnd)
		return
	}

	b.WriteString(ref.Prefix)
	b.WriteString(ref.Name)
	if ref.Nested != nil {
		b.WriteString(start)
		for i, nested := range ref.Nested {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, nested)
		}
		b.WriteString(end)
	}
	b.WriteString(ref.Suffix)
}

func delimiters(language string) (start, end, argsStart, argsEnd string) {
	start, end, argsStart, argsEnd = "<", ">", "(", ")"
	t, ok := traits.Lookup(language)
	if !ok {
		return
	}
	if texts := t.TokenTexts(traits.NestedStart); len(texts) > 0 {
		start = texts[0]
	}
	if texts := t.TokenTexts(traits.NestedEnd); len(texts) > 0 {
		end = texts[0]
	}
	return
}
