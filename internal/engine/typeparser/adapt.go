// # internal/engine/typeparser/adapt.go
package typeparser

import (
	"log/slog"
	"strings"

	"docxref/internal/engine/traits"
)

type adapter func(t *traits.Traits, tokens, array []Token) []Token

var adapters = map[string]adapter{
	traits.TagCpp:    adaptCpp,
	traits.TagJava:   adaptJava,
	traits.TagObjC:   adaptObjC,
	traits.TagPython: adaptPython,
}

// adaptTokens applies the language corrections for extractor quirks before the
// tokens are turned into a type tree.
func adaptTokens(t *traits.Traits, tokens, array []Token) []Token {
	if adapt, ok := adapters[t.Tag]; ok {
		return adapt(t, tokens, array)
	}
	if t.SeparatorsOverlap {
		tokens = adaptSeparators(tokens)
	}
	return tokens
}

// adaptSeparators decides for every ambiguous separator whether it splits nested
// types or arguments, based on the innermost open scope.
func adaptSeparators(tokens []Token) []Token {
	var scopes []traits.TokenCategory
	for i := range tokens {
		switch tokens[i].Category {
		case traits.NestedStart, traits.NestedEnd, traits.ArgsStart, traits.ArgsEnd:
			scopes = append(scopes, tokens[i].Category)
		case traits.Separator, traits.NestedSeparator, traits.ArgsSeparator:
			category, ok := separatorCategory(scopes)
			if !ok {
				slog.Warn("cannot determine separator type", "index", i, "type", joinText(tokens))
				category = traits.Unknown
			}
			tokens[i].Category = category
		}
	}
	return tokens
}

func separatorCategory(scopes []traits.TokenCategory) (traits.TokenCategory, bool) {
	nestedEnds, argsEnds := 0, 0
	for i := len(scopes) - 1; i >= 0; i-- {
		switch scopes[i] {
		case traits.NestedEnd:
			nestedEnds++
		case traits.ArgsEnd:
			argsEnds++
		case traits.NestedStart:
			if nestedEnds == 0 {
				return traits.NestedSeparator, true
			}
			nestedEnds--
		case traits.ArgsStart:
			if argsEnds == 0 {
				return traits.ArgsSeparator, true
			}
			argsEnds--
		}
	}
	return traits.Unknown, false
}

// appendArray adds the separately extracted array part and marks array sizes.
func appendArray(tokens, array []Token) []Token {
	tokens = append(tokens, array...)
	inArray := false
	for i := range tokens {
		switch tokens[i].Category {
		case traits.ArrayStart:
			inArray = true
		case traits.ArrayEnd:
			inArray = false
		case traits.Whitespace:
		default:
			if inArray {
				tokens[i].Category = traits.ArraySize
			}
		}
	}
	return tokens
}

func dropCategory(tokens []Token, c traits.TokenCategory) []Token {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if tok.Category != c {
			out = append(out, tok)
		}
	}
	return out
}

// argNamePattern matches a parameter name in a function signature: a type name,
// at least one suffix, the parameter name and the end of the parameter.
func argNamePattern(t *traits.Traits, suffixes traits.Categories) []step {
	pattern := []step{
		required(t.AllowedNames.With(traits.NestedEnd)...),
		required(suffixes...),
	}
	for i := 0; i < 6; i++ {
		pattern = append(pattern, optional(suffixes...))
	}
	return append(pattern,
		required(traits.Name),
		optional(traits.Whitespace),
		required(traits.ArgsEnd, traits.ArgsSeparator),
	)
}

func markArgNames(t *traits.Traits, tokens []Token, suffixes traits.Categories) {
	forEachMatch(tokens, argNamePattern(t, suffixes), func(match []Token) {
		switch {
		case match[len(match)-2].Category == traits.Name:
			match[len(match)-2].Category = traits.ArgName
		case match[len(match)-3].Category == traits.Name:
			match[len(match)-3].Category = traits.ArgName
		}
	})
}

func adaptCpp(t *traits.Traits, tokens, array []Token) []Token {
	tokens = appendArray(tokens, array)
	tokens = adaptSeparators(tokens)
	tokens = dropCategory(tokens, traits.Invalid)
	markArgNames(t, tokens, t.AllowedSuffixes.Without(traits.Name, traits.NamespaceSeparator))

	// Function pointer typedefs leave a trailing "(*" or "(*name".
	n := len(tokens)
	if n > 2 && tokens[n-2].Category == traits.ArgsStart && tokens[n-1].Category == traits.Operator {
		tokens = tokens[:n-2]
	}
	n = len(tokens)
	if n > 3 && tokens[n-3].Category == traits.ArgsStart && tokens[n-2].Category == traits.Operator {
		tokens = tokens[:n-3]
	}
	return tokens
}

func adaptObjC(t *traits.Traits, tokens, array []Token) []Token {
	tokens = appendArray(tokens, array)
	tokens = adaptSeparators(tokens)

	// The block marker in "(^)" carries no type information.
	forEachMatch(tokens, []step{
		required(traits.ArgsStart),
		optional(traits.Whitespace),
		required(traits.Block),
		optional(traits.Whitespace),
		required(traits.ArgsEnd),
	}, func(match []Token) {
		for i := range match {
			match[i].Category = traits.Invalid
		}
	})
	markArgNames(t, tokens, t.AllowedSuffixes)
	return dropCategory(tokens, traits.Invalid)
}

func adaptJava(_ *traits.Traits, tokens, array []Token) []Token {
	tokens = appendArray(tokens, array)
	tokens = dropCategory(tokens, traits.Invalid)

	// Separately declared wildcard bounds are not supported.
	nested := 0
	for i := range tokens {
		if nested == 0 && tokens[i].Category == traits.Name {
			break
		}
		switch tokens[i].Category {
		case traits.NestedStart:
			nested++
			tokens[i].Category = traits.Unknown
		case traits.NestedEnd:
			nested--
			tokens[i].Category = traits.Unknown
		default:
			if nested > 0 {
				tokens[i].Category = traits.Unknown
			}
		}
	}

	forEachMatch(tokens, []step{
		required(traits.Name),
		required(traits.Whitespace),
		required(traits.WildcardBounds),
	}, func(match []Token) {
		match[0].Category = traits.Wildcard
	})

	for i := range tokens {
		text := tokens[i].Text
		if tokens[i].Category != traits.Name || text == "" {
			continue
		}
		switch {
		case len(text) > len("__AT____") && strings.HasPrefix(text, "__AT__") && strings.HasSuffix(text, "__"):
			tokens[i].Category = traits.Annotation
			tokens[i].Text = "@" + text[len("__AT__"):len(text)-len("__")]
		case strings.HasPrefix(text, "@"):
			tokens[i].Category = traits.Annotation
		}
	}
	return tokens
}

func adaptPython(t *traits.Traits, tokens, array []Token) []Token {
	if len(tokens) == 0 {
		return nil
	}

	// Nested type hints arrive separately. The extractor may leave the final
	// closing bracket in the type itself; the nested part goes in front of it.
	if len(array) > 0 {
		if tokens[len(tokens)-1].Category == traits.Whitespace {
			tokens = tokens[:len(tokens)-1]
		}
		if n := len(tokens); n > 0 && tokens[n-1].Category == traits.NestedEnd {
			last := tokens[n-1]
			tokens = append(append(tokens[:n-1:n-1], array...), last)
		} else {
			tokens = append(tokens, array...)
		}
	}

	out := tokens[:0:0]
	for _, tok := range tokens {
		if !isDroppedWord(t, tok.Text) {
			out = append(out, tok)
		}
	}
	return out
}

func isDroppedWord(t *traits.Traits, text string) bool {
	for _, w := range t.DroppedWords {
		if w == text {
			return true
		}
	}
	return false
}
