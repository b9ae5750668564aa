package typeparser

import (
	"fmt"
	"strings"

	"docxref/internal/engine/traits"
)

// Token is one classified piece of a type declaration. RefID and Kind are set
// for tokens that came from an inline cross-reference marker.
type Token struct {
	Text     string
	Category traits.TokenCategory
	RefID    string
	Kind     string
}

func (t Token) String() string {
	return fmt.Sprintf("%s: %q", t.Category, t.Text)
}

// Fragment is a piece of declaration text as delivered by a document loader:
// either plain text the parser interprets or a marked cross-reference.
type Fragment struct {
	Text  string
	RefID string
	Kind  string
	IsRef bool
}

func Text(text string) Fragment {
	return Fragment{Text: text}
}

func Ref(text, refID, kind string) Fragment {
	return Fragment{Text: text, RefID: refID, Kind: kind, IsRef: true}
}

func joinText(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

func allWhitespace(tokens []Token) bool {
	for _, t := range tokens {
		if t.Category != traits.Whitespace {
			return false
		}
	}
	return true
}
