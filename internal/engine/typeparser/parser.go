// # internal/engine/typeparser/parser.go

// Package typeparser turns declaration type strings into model.TypeRef trees.
//
// One algorithm serves all languages. Language differences live in the
// traits tables and in a small set of token adapters that correct known
// extractor quirks.
package typeparser

import (
	"errors"
	"log/slog"
	"strings"

	"docxref/internal/engine/model"
	"docxref/internal/engine/traits"
)

// UnresolvedSink receives type references that need cross-document resolution.
type UnresolvedSink interface {
	UnresolvedRef(ref *model.TypeRef)
}

var errUnterminated = errors.New("unexpected end of nested types")

// Parser builds type trees for one language. It keeps no state between calls.
type Parser struct {
	traits *traits.Traits
	sink   UnresolvedSink
}

// NewParser creates a parser. sink may be nil when references do not need to be
// resolved later.
func NewParser(t *traits.Traits, sink UnresolvedSink) *Parser {
	return &Parser{traits: t, sink: sink}
}

func (p *Parser) Traits() *traits.Traits {
	return p.traits
}

// Parse builds a type from declaration fragments. array holds the separately
// extracted array or subscript part of the declaration, if any. It returns nil
// when there is no type information.
func (p *Parser) Parse(fragments, array []Fragment, namespace string) *model.TypeRef {
	tokens := TokenizeFragments(p.traits, fragments)
	var arrayTokens []Token
	if len(array) > 0 {
		arrayTokens = TokenizeFragments(p.traits, array)
	}
	tokens = adaptTokens(p.traits, tokens, arrayTokens)
	return p.FromTokens(tokens, namespace)
}

// ParseText is Parse for plain text without reference markers.
func (p *Parser) ParseText(text, namespace string) *model.TypeRef {
	return p.Parse([]Fragment{Text(text)}, nil, namespace)
}

// FromTokens builds a type from already adapted tokens. Malformed input never
// fails: unterminated nesting yields a reference named after the raw text.
// References are queued only once the whole tree is built, so a fallback
// leaves nothing behind in the sink.
func (p *Parser) FromTokens(tokens []Token, namespace string) *model.TypeRef {
	var pending []*model.TypeRef
	ref := p.build(tokens, namespace, &pending)
	for _, r := range pending {
		p.queue(r)
	}
	return ref
}

// build appends the references of a successful parse to out. On fallback out
// is left untouched.
func (p *Parser) build(tokens []Token, namespace string, out *[]*model.TypeRef) *model.TypeRef {
	if len(tokens) == 0 || allWhitespace(tokens) {
		return nil
	}
	original := tokens
	tokens = append([]Token(nil), tokens...)

	prefixes, tokens := selectTokens(tokens, p.traits.AllowedPrefixes)
	prefixes = trimLeadingWhitespace(prefixes)

	names, tokens := selectTokens(tokens, p.traits.AllowedNames)
	names = trimLeadingWhitespace(names)
	names, tokens = pushBackTrailingWhitespace(names, tokens)

	var pending []*model.TypeRef
	nested, tokens, err := p.nestedTypes(tokens, namespace, &pending)
	if err != nil {
		slog.Warn("failed to parse nested types", "language", p.traits.Tag, "type", joinText(original), "error", err)
		return p.fallback(original)
	}

	suffixes, tokens := selectTokens(tokens, p.traits.AllowedSuffixes)
	suffixes, tokens = pushBackTrailingWhitespace(suffixes, tokens)

	args, tokens, err := p.argTypes(tokens, namespace, &pending)
	if err != nil {
		slog.Warn("failed to parse arguments", "language", p.traits.Tag, "type", joinText(original), "error", err)
		return p.fallback(original)
	}

	if len(names) == 0 {
		slog.Debug("no type name found", "language", p.traits.Tag, "type", joinText(original))
		return p.fallback(original)
	}

	if !allWhitespace(tokens) {
		slog.Debug("unexpected trailing tokens", "language", p.traits.Tag, "tokens", joinText(tokens), "type", joinText(original))
		suffixes = append(suffixes, tokens...)
	}

	named := &model.TypeRef{
		Language:  p.traits.Tag,
		Namespace: namespace,
		Name:      p.traits.CleanupName(joinText(names)),
		Prefix:    joinText(prefixes),
		Suffix:    joinText(suffixes),
		Nested:    nested,
		ID:        p.traits.UniqueID(names[0].RefID),
		Kind:      names[0].Kind,
	}

	ref := named
	if args != nil {
		ref = &model.TypeRef{
			Language:  p.traits.Tag,
			Namespace: namespace,
			Kind:      "closure",
			Args:      args,
			Returns:   named,
		}
	}

	*out = append(*out, pending...)
	*out = append(*out, ref)
	if ref.Returns != nil {
		*out = append(*out, ref.Returns)
	}
	return ref
}

func (p *Parser) queue(ref *model.TypeRef) {
	if p.sink == nil || ref == nil {
		return
	}
	if ref.Name != "" && ref.ID == "" && !p.traits.IsLanguageStandardType(ref.Name) {
		p.sink.UnresolvedRef(ref)
	}
}

// fallback keeps the raw declaration as the name. The result is never queued.
func (p *Parser) fallback(tokens []Token) *model.TypeRef {
	name := strings.TrimSpace(joinText(tokens))
	if name == "" {
		return nil
	}
	return &model.TypeRef{Language: p.traits.Tag, Name: name}
}

// nestedTypes returns nil when there is no nested block and an empty slice for
// an empty one. A nested entry without a type ends the list.
func (p *Parser) nestedTypes(tokens []Token, namespace string, out *[]*model.TypeRef) ([]*model.TypeRef, []Token, error) {
	groups, rest, err := selectNestedTokens(tokens, traits.NestedStart, traits.NestedEnd, traits.NestedSeparator)
	if err != nil || groups == nil {
		return nil, rest, err
	}
	refs := make([]*model.TypeRef, 0, len(groups))
	for _, group := range groups {
		ref := p.build(group, namespace, out)
		if ref == nil {
			break
		}
		refs = append(refs, ref)
	}
	return refs, rest, nil
}

func (p *Parser) argTypes(tokens []Token, namespace string, out *[]*model.TypeRef) ([]*model.Parameter, []Token, error) {
	groups, rest, err := selectNestedTokens(tokens, traits.ArgsStart, traits.ArgsEnd, traits.ArgsSeparator)
	if err != nil || groups == nil {
		return nil, rest, err
	}
	params := make([]*model.Parameter, 0, len(groups))
	for _, group := range groups {
		if arg := p.argFromTokens(group, namespace, out); arg != nil {
			params = append(params, arg)
		}
	}
	return params, rest, nil
}

func (p *Parser) argFromTokens(tokens []Token, namespace string, out *[]*model.TypeRef) *model.Parameter {
	if len(tokens) == 0 || allWhitespace(tokens) {
		return nil
	}
	end := len(tokens)
	for end > 0 && tokens[end-1].Category == traits.Whitespace {
		end--
	}
	nameStart := end
	for nameStart > 0 && tokens[nameStart-1].Category == traits.ArgName {
		nameStart--
	}
	return &model.Parameter{
		Type: p.build(tokens[:nameStart], namespace, out),
		Name: joinText(tokens[nameStart:end]),
	}
}

// selectTokens splits off the leading tokens whose category is in cats.
func selectTokens(tokens []Token, cats traits.Categories) ([]Token, []Token) {
	for i, t := range tokens {
		if !cats.Has(t.Category) {
			return tokens[:i:i], tokens[i:]
		}
	}
	return tokens, nil
}

func trimLeadingWhitespace(tokens []Token) []Token {
	for len(tokens) > 0 && tokens[0].Category == traits.Whitespace {
		tokens = tokens[1:]
	}
	return tokens
}

// pushBackTrailingWhitespace moves trailing whitespace of selected back to the
// front of rest.
func pushBackTrailingWhitespace(selected, rest []Token) ([]Token, []Token) {
	end := len(selected)
	for end > 0 && selected[end-1].Category == traits.Whitespace {
		end--
	}
	if end == len(selected) {
		return selected, rest
	}
	merged := make([]Token, 0, len(selected)-end+len(rest))
	merged = append(merged, selected[end:]...)
	merged = append(merged, rest...)
	return selected[:end:end], merged
}

// selectNestedTokens finds a block opened by start and closed by end, split at
// top level separators. It returns nil groups when the block is absent and one
// empty group for an empty block.
func selectNestedTokens(tokens []Token, start, end, separator traits.TokenCategory) ([][]Token, []Token, error) {
	open := -1
	for i, t := range tokens {
		if t.Category == traits.Whitespace {
			continue
		}
		if t.Category == start {
			open = i
		}
		break
	}
	if open < 0 {
		return nil, tokens, nil
	}

	var groups [][]Token
	level := 0
	from := open + 1
	for i := from; i < len(tokens); i++ {
		switch c := tokens[i].Category; {
		case c == start:
			level++
		case level > 0 && c == end:
			level--
		case level == 0 && (c == separator || c == end):
			groups = append(groups, tokens[from:i:i])
			from = i + 1
			if c == end {
				return groups, tokens[i+1:], nil
			}
		}
	}
	return nil, tokens, errUnterminated
}
