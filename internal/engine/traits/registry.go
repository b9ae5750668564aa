package traits

import (
	"sort"
	"strings"
	"unicode"
)

var registry = map[string]*Traits{
	TagCpp:    Cpp,
	TagJava:   Java,
	TagObjC:   ObjC,
	TagPython: Python,
}

// Lookup returns the traits registered for a language tag.
func Lookup(tag string) (*Traits, bool) {
	t, ok := registry[tag]
	return t, ok
}

// Tags lists all supported language tags in sorted order.
func Tags() []string {
	out := make([]string, 0, len(registry))
	for tag := range registry {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// SafeLanguageTag converts an extractor language name into a tag usable in ids
// and file names.
func SafeLanguageTag(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "c++":
		return TagCpp
	case "objective-c":
		return TagObjC
	}
	return name
}

// build derives the multi-character punctuation symbols the tokenizer must match
// as a whole, longest first.
func build(t Traits) *Traits {
	for _, class := range t.Tokens {
		for _, text := range class.Texts {
			if len(text) > 1 && isPunctuation(text) {
				t.symbols = append(t.symbols, text)
			}
		}
	}
	sort.SliceStable(t.symbols, func(i, j int) bool {
		return len(t.symbols[i]) > len(t.symbols[j])
	})
	return &t
}

// MatchSymbol returns the longest multi-character symbol at the start of text.
func (t *Traits) MatchSymbol(text string) string {
	for _, sym := range t.symbols {
		if strings.HasPrefix(text, sym) {
			return sym
		}
	}
	return ""
}

func isPunctuation(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return false
		}
	}
	return true
}
