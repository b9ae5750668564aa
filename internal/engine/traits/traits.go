package traits

import (
	"strings"
)

// TokenClass maps literal token texts onto a category.
type TokenClass struct {
	Category TokenCategory
	Texts    []string
}

// MemberFilter matches members the extractor emits but that are not part of the API.
// An empty Name matches every member of the kind.
type MemberFilter struct {
	Kind string
	Name string
}

// Traits describes the lexical rules of one source language for type strings.
// It holds lookup tables only; the tokenizer and the type builder are shared.
type Traits struct {
	Tag string

	// Tokens is matched in order against whole token texts.
	Tokens []TokenClass
	// Boundaries holds every character that forces a token split. Whitespace
	// always splits.
	Boundaries string
	// SeparatorsOverlap marks languages that use the same character to separate
	// nested types and arguments.
	SeparatorsOverlap bool

	AllowedPrefixes Categories
	AllowedSuffixes Categories
	AllowedNames    Categories

	NestingBoundary    string
	NamespaceSeparator string
	FileExtensions     []string

	StandardTypes    map[string]bool
	StandardPrefixes []string

	// UnqualifiedKinds are kinds whose names are global regardless of the parent.
	UnqualifiedKinds map[string]bool
	// NameReplacer and NameTrimSuffixes drive CleanupName.
	NameReplacer     *strings.Replacer
	NameTrimSpace    bool
	NameTrimSuffixes []string

	BlacklistedMembers []MemberFilter

	// DroppedWords are token texts removed before parsing.
	DroppedWords []string

	symbols []string
}

// IsBoundary reports whether r splits tokens.
func (t *Traits) IsBoundary(r rune) bool {
	return isSpace(r) || strings.ContainsRune(t.Boundaries, r)
}

// Classify returns the category of a complete token text.
func (t *Traits) Classify(text string) TokenCategory {
	if text != "" && strings.TrimSpace(text) == "" {
		return Whitespace
	}
	for _, class := range t.Tokens {
		for _, candidate := range class.Texts {
			if candidate == text {
				return class.Category
			}
		}
	}
	return Name
}

// TokenTexts returns the literal texts registered for a category.
func (t *Traits) TokenTexts(c TokenCategory) []string {
	var out []string
	for _, class := range t.Tokens {
		if class.Category == c {
			out = append(out, class.Texts...)
		}
	}
	return out
}

// IsLanguageStandardType reports whether a type is built into the language or its
// standard library. Such types are never queued for resolution.
func (t *Traits) IsLanguageStandardType(name string) bool {
	if t.StandardTypes[name] {
		return true
	}
	for _, prefix := range t.StandardPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// IsMemberBlacklisted reports whether a member is extractor noise.
func (t *Traits) IsMemberBlacklisted(kind, name string) bool {
	for _, f := range t.BlacklistedMembers {
		if f.Kind == kind && (f.Name == "" || f.Name == name) {
			return true
		}
	}
	return false
}

func (t *Traits) CleanupName(name string) string {
	if t.NameReplacer != nil {
		name = t.NameReplacer.Replace(name)
	}
	if t.NameTrimSpace {
		name = strings.TrimSpace(name)
	}
	for _, suffix := range t.NameTrimSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// FullName qualifies name relative to parent. Already qualified names are
// returned unchanged, so FullName(FullName(n, p), p) == FullName(n, p).
func (t *Traits) FullName(name, parent, kind string) string {
	if t.NamespaceSeparator == "" || t.UnqualifiedKinds[kind] {
		return name
	}
	if parent == "" || strings.HasPrefix(name, parent+t.NamespaceSeparator) {
		return name
	}
	for _, ext := range t.FileExtensions {
		if strings.HasSuffix(parent, ext) {
			return name
		}
	}
	return parent + t.NamespaceSeparator + name
}

// NamespaceAndName splits a qualified name into its enclosing scope and its last
// segment. Template arguments after the nesting boundary stay with the name.
func (t *Traits) NamespaceAndName(fullName, kind string) (string, string) {
	if t.NamespaceSeparator == "" || t.UnqualifiedKinds[kind] {
		return "", fullName
	}
	name, nested := fullName, ""
	if t.NestingBoundary != "" {
		if idx := strings.Index(fullName, t.NestingBoundary); idx >= 0 {
			name, nested = fullName[:idx], fullName[idx:]
		}
	}
	idx := strings.LastIndex(name, t.NamespaceSeparator)
	if idx < 0 {
		return "", name + nested
	}
	return name[:idx], name[idx+len(t.NamespaceSeparator):] + nested
}

func (t *Traits) Namespace(fullName, kind string) string {
	ns, _ := t.NamespaceAndName(fullName, kind)
	return ns
}

func (t *Traits) ShortName(name string) string {
	_, short := t.NamespaceAndName(name, "")
	return short
}

// Names derives the short name, full name and namespace of a raw extractor name.
func (t *Traits) Names(rawName, parent, kind string) (short, full, namespace string) {
	name := t.CleanupName(rawName)
	full = t.FullName(name, parent, kind)
	namespace, short = t.NamespaceAndName(full, kind)
	return short, full, namespace
}

// UniqueID makes an extractor id unique across languages.
func (t *Traits) UniqueID(id string) string {
	if id == "" {
		return ""
	}
	// Anchors containing "__" do not survive the markup renderer.
	return t.Tag + "-" + strings.ReplaceAll(id, "__", "-")
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
