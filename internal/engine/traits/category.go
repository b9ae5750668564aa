package traits

// TokenCategory classifies a token of a type declaration string.
type TokenCategory int

const (
	Unknown TokenCategory = iota
	Whitespace
	Qualifier
	Operator
	Name
	NestedStart
	NestedSeparator
	NestedEnd
	Wildcard
	WildcardBounds
	Invalid
	NamespaceSeparator
	ArgsStart
	ArgsSeparator
	ArgsEnd
	ArgName
	// Separator is used when one character separates both nested types and
	// arguments. Token adaptation replaces it by the scoped separator.
	Separator
	BuiltInName
	Block
	Annotation
	ArrayStart
	ArrayEnd
	ArraySize
)

var categoryNames = [...]string{
	Unknown:            "UNKNOWN",
	Whitespace:         "WHITESPACE",
	Qualifier:          "QUALIFIER",
	Operator:           "OPERATOR",
	Name:               "NAME",
	NestedStart:        "NESTED_START",
	NestedSeparator:    "NESTED_SEPARATOR",
	NestedEnd:          "NESTED_END",
	Wildcard:           "WILDCARD",
	WildcardBounds:     "WILDCARD_BOUNDS",
	Invalid:            "INVALID",
	NamespaceSeparator: "NAMESPACE_SEPARATOR",
	ArgsStart:          "ARGS_START",
	ArgsSeparator:      "ARGS_SEPARATOR",
	ArgsEnd:            "ARGS_END",
	ArgName:            "ARG_NAME",
	Separator:          "SEPARATOR",
	BuiltInName:        "BUILT_IN_NAME",
	Block:              "BLOCK",
	Annotation:         "ANNOTATION",
	ArrayStart:         "ARRAY_START",
	ArrayEnd:           "ARRAY_END",
	ArraySize:          "ARRAY_SIZE",
}

func (c TokenCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "UNKNOWN"
	}
	return categoryNames[c]
}

// Categories is an unordered set of token categories. A nil set never matches.
type Categories []TokenCategory

func (cs Categories) Has(c TokenCategory) bool {
	for _, candidate := range cs {
		if candidate == c {
			return true
		}
	}
	return false
}

// Without returns a copy of the set with the given categories removed.
func (cs Categories) Without(remove ...TokenCategory) Categories {
	out := make(Categories, 0, len(cs))
	for _, c := range cs {
		if !Categories(remove).Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// With returns a copy of the set with extra categories appended.
func (cs Categories) With(add ...TokenCategory) Categories {
	out := make(Categories, 0, len(cs)+len(add))
	out = append(out, cs...)
	return append(out, add...)
}
