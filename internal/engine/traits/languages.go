// # internal/engine/traits/languages.go
package traits

import "strings"

const (
	TagCpp    = "cpp"
	TagJava   = "java"
	TagObjC   = "objc"
	TagPython = "python"
)

func stringSet(values ...string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

var cppBuiltInTypes = stringSet(
	"void", "bool", "signed char", "unsigned char", "char", "wchar_t", "char16_t",
	"char32_t", "char8_t", "float", "double", "long double", "short", "short int",
	"signed short", "signed short int", "unsigned short", "unsigned short int", "int",
	"signed", "signed int", "unsigned", "unsigned int", "long", "long int", "signed long",
	"signed long int", "unsigned long", "unsigned long int", "long long", "long long int",
	"signed long long", "signed long long int", "unsigned long long",
	"unsigned long long int",
)

// Cpp describes C++ type strings: `::` scopes, `<>` templates, `(*)(...)` function types.
var Cpp = build(Traits{
	Tag: TagCpp,
	Tokens: []TokenClass{
		{NestedStart, []string{"<"}},
		{NestedEnd, []string{">"}},
		{ArgsStart, []string{"("}},
		{ArgsEnd, []string{")"}},
		{ArrayStart, []string{"["}},
		{ArrayEnd, []string{"]"}},
		{Separator, []string{","}},
		{Operator, []string{"*", "&", "..."}},
		{NamespaceSeparator, []string{":"}},
		{Qualifier, []string{"const", "volatile", "mutable", "enum", "class", "typename"}},
		{BuiltInName, []string{"void", "bool", "signed", "unsigned", "char", "wchar_t",
			"char16_t", "char32_t", "char8_t", "float", "double", "long", "short", "int"}},
		// constexpr is not part of the type
		{Invalid, []string{"constexpr"}},
	},
	Boundaries:         "<>()[],*&:",
	SeparatorsOverlap:  true,
	AllowedPrefixes:    Categories{Whitespace, Operator, Qualifier, Invalid},
	AllowedSuffixes:    Categories{Whitespace, Operator, Qualifier, Name, NamespaceSeparator, Invalid, ArrayStart, ArrayEnd, ArraySize},
	AllowedNames:       Categories{Whitespace, Name, NamespaceSeparator, BuiltInName},
	NestingBoundary:    "<",
	NamespaceSeparator: "::",
	FileExtensions:     []string{".h", ".hpp", ".c", ".cpp"},
	StandardTypes:      cppBuiltInTypes,
	StandardPrefixes:   []string{"std::"},
	BlacklistedMembers: []MemberFilter{{Kind: "friend"}},
})

// Java describes Java type strings: `.` packages, `<>` generics with wildcard bounds.
var Java = build(Traits{
	Tag: TagJava,
	Tokens: []TokenClass{
		{NestedStart, []string{"<"}},
		{NestedEnd, []string{">"}},
		{NestedSeparator, []string{","}},
		{ArrayStart, []string{"["}},
		{ArrayEnd, []string{"]"}},
		{Qualifier, []string{"final", "synchronized", "transient"}},
		{WildcardBounds, []string{"extends", "super"}},
		{Invalid, []string{"private"}},
	},
	Boundaries: "<>[],",
	AllowedPrefixes: Categories{Whitespace, Operator, Qualifier, Wildcard, WildcardBounds,
		Unknown, Annotation},
	AllowedSuffixes:    Categories{Whitespace, ArrayStart, ArrayEnd, ArraySize},
	AllowedNames:       Categories{Whitespace, Name},
	NamespaceSeparator: ".",
	StandardTypes: stringSet("void", "long", "int", "boolean", "byte", "char", "short",
		"float", "double", "String", "T", "?"),
	StandardPrefixes: []string{"java.", "android.", "native "},
	NameReplacer:     strings.NewReplacer("::", "."),
	NameTrimSpace:    true,
})

// ObjC describes Objective-C type strings: `<>` protocol lists, `^` blocks and
// nullability qualifiers.
var ObjC = build(Traits{
	Tag: TagObjC,
	Tokens: []TokenClass{
		{NestedStart, []string{"<"}},
		{NestedEnd, []string{">"}},
		{ArgsStart, []string{"("}},
		{ArgsEnd, []string{")"}},
		{ArrayStart, []string{"["}},
		{ArrayEnd, []string{"]"}},
		{Separator, []string{","}},
		{Operator, []string{"*"}},
		{Qualifier, []string{"nullable", "const", "__weak", "__strong", "__nonnull",
			"_Nullable", "_Nonnull", "__autoreleasing"}},
		{BuiltInName, []string{"char", "unsigned", "signed", "int", "short", "long", "float",
			"double", "void", "bool", "BOOL", "id", "instancetype"}},
		{Block, []string{"^"}},
	},
	Boundaries:         "<>()[],*^",
	SeparatorsOverlap:  true,
	AllowedPrefixes:    Categories{Whitespace, Qualifier},
	AllowedSuffixes:    Categories{Whitespace, Operator, Qualifier, ArgName, ArrayStart, ArrayEnd, ArraySize},
	AllowedNames:       Categories{Whitespace, Name, BuiltInName},
	NamespaceSeparator: ".",
	FileExtensions:     []string{".h"},
	StandardTypes: stringSet("char", "unsigned char", "signed char", "int", "short", "long",
		"float", "double", "void", "bool", "BOOL", "id", "instancetype", "short int",
		"signed short", "signed short int", "unsigned short", "unsigned short int",
		"signed int", "unsigned int", "long int", "signed long", "signed long int",
		"unsigned long", "unsigned long int", "long long", "long long int",
		"signed long long", "signed long long int", "unsigned long long",
		"unsigned long long int", "long double"),
	StandardPrefixes:   []string{"NS"},
	UnqualifiedKinds:   stringSet("enum", "enumvalue", "interface", "protocol"),
	NameTrimSuffixes:   []string{"-p"},
	BlacklistedMembers: []MemberFilter{{Kind: "function", Name: "NS_ENUM"}},
})

// Python describes type hints: `.` modules and `[]` generics.
var Python = build(Traits{
	Tag: TagPython,
	Tokens: []TokenClass{
		{NestedStart, []string{"["}},
		{NestedEnd, []string{"]"}},
		{NestedSeparator, []string{","}},
	},
	Boundaries:         "[],",
	AllowedNames:       Categories{Whitespace, Name},
	NamespaceSeparator: ".",
	StandardTypes: stringSet("None", "bool", "int", "float", "complex", "str", "bytes",
		"bytearray", "object", "list", "dict", "set", "frozenset", "tuple", "type",
		"Any", "Optional", "Union", "List", "Dict", "Set", "Tuple", "Callable", "Iterable",
		"Iterator", "Sequence", "Mapping", "Type"),
	StandardPrefixes: []string{"typing.", "collections."},
	NameReplacer:     strings.NewReplacer("::", ".", `"`, ""),
	NameTrimSpace:    true,
	// The extractor emits the def keyword in front of some return type hints.
	DroppedWords: []string{"def"},
})
