package typeparser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"docxref/internal/engine/traits"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		traits *traits.Traits
		input  string
		want   []Token
	}{
		{
			name:   "empty",
			traits: traits.Cpp,
			input:  "",
			want:   nil,
		},
		{
			name:   "whitespace run is one token",
			traits: traits.Cpp,
			input:  "const  \tFoo",
			want: []Token{
				{Text: "const", Category: traits.Qualifier},
				{Text: "  \t", Category: traits.Whitespace},
				{Text: "Foo", Category: traits.Name},
			},
		},
		{
			name:   "template with namespace",
			traits: traits.Cpp,
			input:  "std::vector<int> &",
			want: []Token{
				{Text: "std", Category: traits.Name},
				{Text: ":", Category: traits.NamespaceSeparator},
				{Text: ":", Category: traits.NamespaceSeparator},
				{Text: "vector", Category: traits.Name},
				{Text: "<", Category: traits.NestedStart},
				{Text: "int", Category: traits.BuiltInName},
				{Text: ">", Category: traits.NestedEnd},
				{Text: " ", Category: traits.Whitespace},
				{Text: "&", Category: traits.Operator},
			},
		},
		{
			name:   "variadic operator",
			traits: traits.Cpp,
			input:  "Args...",
			want: []Token{
				{Text: "Args", Category: traits.Name},
				{Text: "...", Category: traits.Operator},
			},
		},
		{
			name:   "java wildcard bound",
			traits: traits.Java,
			input:  "? extends Foo",
			want: []Token{
				{Text: "?", Category: traits.Name},
				{Text: " ", Category: traits.Whitespace},
				{Text: "extends", Category: traits.WildcardBounds},
				{Text: " ", Category: traits.Whitespace},
				{Text: "Foo", Category: traits.Name},
			},
		},
		{
			name:   "objc block",
			traits: traits.ObjC,
			input:  "void(^)",
			want: []Token{
				{Text: "void", Category: traits.BuiltInName},
				{Text: "(", Category: traits.ArgsStart},
				{Text: "^", Category: traits.Block},
				{Text: ")", Category: traits.ArgsEnd},
			},
		},
		{
			name:   "python subscript",
			traits: traits.Python,
			input:  "Dict[str, int]",
			want: []Token{
				{Text: "Dict", Category: traits.Name},
				{Text: "[", Category: traits.NestedStart},
				{Text: "str", Category: traits.Name},
				{Text: ",", Category: traits.NestedSeparator},
				{Text: " ", Category: traits.Whitespace},
				{Text: "int", Category: traits.Name},
				{Text: "]", Category: traits.NestedEnd},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.traits, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeFragments(t *testing.T) {
	got := TokenizeFragments(traits.Cpp, []Fragment{
		Text("const "),
		Ref("MyType[12]", "tomtom_mytype", "compound"),
		Text(" &"),
	})
	want := []Token{
		{Text: "const", Category: traits.Qualifier},
		{Text: " ", Category: traits.Whitespace},
		{Text: "MyType", Category: traits.Name, RefID: "tomtom_mytype", Kind: "compound"},
		{Text: "[", Category: traits.ArrayStart},
		{Text: "12", Category: traits.Name},
		{Text: "]", Category: traits.ArrayEnd},
		{Text: " ", Category: traits.Whitespace},
		{Text: "&", Category: traits.Operator},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TokenizeFragments mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeFragments_RefWithoutText(t *testing.T) {
	got := TokenizeFragments(traits.Cpp, []Fragment{Ref("", "id", "compound")})
	if len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}
