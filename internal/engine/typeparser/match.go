package typeparser

import "docxref/internal/engine/traits"

// step is one position in a token pattern. An optional step that does not match
// is skipped without consuming a token.
type step struct {
	cats     traits.Categories
	optional bool
}

func required(cats ...traits.TokenCategory) step {
	return step{cats: cats}
}

func optional(cats ...traits.TokenCategory) step {
	return step{cats: cats, optional: true}
}

// forEachMatch calls fn for every token run matching pattern, scanning start
// positions left to right. Matches are evaluated lazily so category changes made
// by fn are visible to later matches. fn receives a view into tokens; writes to
// it modify tokens. A pattern running past the end of tokens does not match.
func forEachMatch(tokens []Token, pattern []step, fn func(match []Token)) {
	for start := range tokens {
		idx := start
		matched := true
		for _, s := range pattern {
			if idx >= len(tokens) {
				matched = false
				break
			}
			switch {
			case s.cats.Has(tokens[idx].Category):
				idx++
			case s.optional:
			default:
				matched = false
			}
			if !matched {
				break
			}
		}
		if matched {
			fn(tokens[start:idx])
		}
	}
}
