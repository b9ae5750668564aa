// # internal/engine/typeparser/tokenizer.go
package typeparser

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"docxref/internal/engine/traits"
)

// Tokenize splits text into tokens using the language's boundaries. It never
// fails: unexpected characters end up in NAME or UNKNOWN tokens. Runs of
// whitespace become a single token that keeps the original text.
func Tokenize(t *traits.Traits, text string) []Token {
	var tokens []Token
	var acc strings.Builder

	appendToken := func(text string) {
		category := t.Classify(text)
		if category == traits.Whitespace && len(tokens) > 0 && tokens[len(tokens)-1].Category == traits.Whitespace {
			tokens[len(tokens)-1].Text += text
			return
		}
		tokens = append(tokens, Token{Text: text, Category: category})
	}
	flush := func() {
		if acc.Len() > 0 {
			appendToken(acc.String())
			acc.Reset()
		}
	}

	for i := 0; i < len(text); {
		if sym := t.MatchSymbol(text[i:]); sym != "" {
			flush()
			appendToken(sym)
			i += len(sym)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			flush()
			tokens = append(tokens, Token{Text: text[i : i+1], Category: traits.Unknown})
			i++
			continue
		}
		if t.IsBoundary(r) {
			flush()
			appendToken(text[i : i+size])
		} else {
			acc.WriteString(text[i : i+size])
		}
		i += size
	}
	flush()
	return tokens
}

// TokenizeFragments tokenizes loader fragments. Marked references become a
// single NAME token carrying the reference id and kind.
func TokenizeFragments(t *traits.Traits, fragments []Fragment) []Token {
	var tokens []Token
	for _, f := range fragments {
		if !f.IsRef {
			for _, tok := range Tokenize(t, f.Text) {
				if tok.Category == traits.Whitespace && len(tokens) > 0 && tokens[len(tokens)-1].Category == traits.Whitespace {
					tokens[len(tokens)-1].Text += tok.Text
					continue
				}
				tokens = append(tokens, tok)
			}
			continue
		}
		if f.Text == "" || f.RefID == "" {
			slog.Warn("reference marker without name or id", "language", t.Tag, "name", f.Text, "id", f.RefID)
		}
		name, tail := splitArraySuffix(t, f.Text)
		if name != "" {
			tokens = append(tokens, Token{Text: name, Category: traits.Name, RefID: f.RefID, Kind: f.Kind})
		}
		if tail != "" {
			tokens = append(tokens, Tokenize(t, tail)...)
		}
	}
	return tokens
}

// splitArraySuffix separates array brackets the extractor put inside a
// reference marker, as in "MyType[16]".
func splitArraySuffix(t *traits.Traits, text string) (string, string) {
	cut := -1
	for _, c := range []traits.TokenCategory{traits.ArrayStart, traits.ArrayEnd} {
		for _, bracket := range t.TokenTexts(c) {
			if idx := strings.Index(text, bracket); idx > 0 && (cut < 0 || idx < cut) {
				cut = idx
			}
		}
	}
	if cut < 0 {
		return text, ""
	}
	return text[:cut], text[cut:]
}
