package registry

import (
	"regexp"
	"strings"

	"docxref/internal/engine/model"
	"docxref/internal/engine/typeparser"
)

type elementFilter interface {
	match(e model.Element) bool
	applies() bool
}

type combinedFilter []elementFilter

// combine keeps only the filters that apply. All of them must match.
func combine(filters ...elementFilter) combinedFilter {
	var out combinedFilter
	for _, f := range filters {
		if f.applies() {
			out = append(out, f)
		}
	}
	return out
}

func (c combinedFilter) match(e model.Element) bool {
	for _, f := range c {
		if !f.match(e) {
			return false
		}
	}
	return true
}

func (c combinedFilter) applies() bool { return len(c) > 0 }

type kindFilter string

func (k kindFilter) match(e model.Element) bool { return e.Base().Kind == string(k) }
func (k kindFilter) applies() bool              { return k != "" }

type langFilter string

func (l langFilter) match(e model.Element) bool { return e.Base().Language == string(l) }
func (l langFilter) applies() bool              { return l != "" }

// nameFilter matches the full name of an element. With a namespace the name is
// looked up relative to it: the element matches when its full name ends with
// the name and the remaining scope encloses the namespace.
type nameFilter struct {
	name           string
	namespace      string
	exactNamespace bool
	nameParts      []string
	namespaceParts []string
}

func newNameFilter(name, namespace string, exact bool) *nameFilter {
	f := &nameFilter{name: name, namespace: namespace, exactNamespace: exact}
	if name != "" && namespace != "" {
		f.nameParts = SplitNamespaces(name)
		f.namespaceParts = SplitNamespaces(namespace)
	}
	return f
}

func (f *nameFilter) applies() bool { return f.name != "" }

func (f *nameFilter) match(e model.Element) bool {
	fullName := e.Base().FullName
	if f.name == "" || fullName == "" {
		return false
	}
	if f.namespace == "" {
		return fullName == f.name
	}
	if !strings.HasSuffix(fullName, f.name) {
		return false
	}

	parts := SplitNamespaces(fullName)
	if f.exactNamespace {
		return equalParts(parts, append(append([]string(nil), f.namespaceParts...), f.nameParts...))
	}
	if !hasSuffixParts(parts, f.nameParts) {
		return false
	}
	scope := parts[:len(parts)-len(f.nameParts)]
	return len(scope) == 0 || hasPrefixParts(f.namespaceParts, scope)
}

func equalParts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefixParts(parts, prefix []string) bool {
	return len(parts) >= len(prefix) && equalParts(parts[:len(prefix)], prefix)
}

func hasSuffixParts(parts, suffix []string) bool {
	return len(parts) >= len(suffix) && equalParts(parts[len(parts)-len(suffix):], suffix)
}

// parameterTypeMatcher selects overloads by parameter types, given a name of the
// form `name(T1, T2)`. Without a parenthesized list it does not apply.
type parameterTypeMatcher struct {
	name     string
	argTypes []string
	hasArgs  bool
}

func newParameterTypeMatcher(query string) *parameterTypeMatcher {
	start := strings.Index(query, "(")
	end := strings.LastIndex(query, ")")
	if start < 0 || end < 0 || start > end {
		return &parameterTypeMatcher{name: query}
	}
	return &parameterTypeMatcher{
		name:     normalizeType(query[:start]),
		argTypes: splitArgs(query[start+1 : end]),
		hasArgs:  true,
	}
}

func (m *parameterTypeMatcher) applies() bool { return m.hasArgs }

func (m *parameterTypeMatcher) match(e model.Element) bool {
	params := model.Params(e)
	if len(m.argTypes) != len(params) {
		return false
	}
	for i, param := range params {
		if normalizeType(typeparser.Render(param.Type)) != m.argTypes[i] {
			return false
		}
	}
	return true
}

func splitArgs(query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{}
	}
	var args []string
	nested, from := 0, 0
	for i, c := range query {
		switch {
		case strings.ContainsRune("({[<", c):
			nested++
		case strings.ContainsRune(")}]>", c):
			nested--
		case c == ',' && nested == 0:
			args = append(args, normalizeType(query[from:i]))
			from = i + 1
		}
	}
	if rest := query[from:]; strings.TrimSpace(rest) != "" {
		args = append(args, normalizeType(rest))
	}
	return args
}

var (
	spaceRun         = regexp.MustCompile(`\s+`)
	wordSpaceNonWord = regexp.MustCompile(`(\w)\s(\W)`)
	nonWordSpaceWord = regexp.MustCompile(`(\W)\s(\w)`)
	nonWordSpaceNon  = regexp.MustCompile(`(\W)\s(\W)`)
)

// normalizeType removes whitespace that does not separate two words, so
// "const Foo &" and "const Foo&" compare equal.
func normalizeType(name string) string {
	name = strings.TrimSpace(name)
	name = spaceRun.ReplaceAllString(name, " ")
	name = wordSpaceNonWord.ReplaceAllString(name, "$1$2")
	name = nonWordSpaceWord.ReplaceAllString(name, "$1$2")
	name = nonWordSpaceNon.ReplaceAllString(name, "$1$2")
	return name
}
