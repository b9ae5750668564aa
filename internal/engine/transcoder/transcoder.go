// # internal/engine/transcoder/transcoder.go

// Package transcoder derives the documentation of one language from another,
// such as Swift from Objective-C. Transcoded elements are stored in the same
// registry as their source and are created at most once.
package transcoder

import (
	"log/slog"
	"sort"
	"strings"

	"docxref/internal/core/errors"
	"docxref/internal/engine/model"
	"docxref/internal/engine/registry"
	"docxref/internal/shared/observability"
)

// Rules adapt the generic element copy to one language pair. Nil hooks keep the
// source value.
type Rules struct {
	Source string
	Target string

	// MemberName rewrites the short and full name of members.
	MemberName func(name string) string
	// TypeRef adjusts a transcoded type reference in place. Nested types,
	// arguments and return types are transcoded before their parent.
	TypeRef func(ref *model.TypeRef)
	// DropReturn reports whether a transcoded return value is left out.
	DropReturn func(ret *model.ReturnValue) bool
}

var supported = map[[2]string]Rules{}

func register(r Rules) {
	supported[[2]string{r.Source, r.Target}] = r
}

// Pairs lists the supported source and target languages.
func Pairs() [][2]string {
	out := make([][2]string, 0, len(supported))
	for pair := range supported {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i][0]+"/"+out[i][1] < out[j][0]+"/"+out[j][1]
	})
	return out
}

type Transcoder struct {
	rules Rules
	reg   *registry.Registry
}

// New returns a transcoder between two languages. Unsupported pairs fail with
// NOT_SUPPORTED.
func New(source, target string, reg *registry.Registry) (*Transcoder, error) {
	rules, ok := supported[[2]string{source, target}]
	if !ok {
		return nil, errors.Newf(errors.CodeNotSupported, "transcoding from %s to %s is not supported", source, target)
	}
	return &Transcoder{rules: rules, reg: reg}, nil
}

// Transcode returns the version of e in the target language, creating it in reg
// when it does not exist yet.
func Transcode(e model.Element, target string, reg *registry.Registry) (model.Element, error) {
	t, err := New(e.Base().Language, target, reg)
	if err != nil {
		return nil, err
	}
	switch v := e.(type) {
	case *model.Compound:
		return t.Compound(v)
	case *model.Member:
		return t.Member(v)
	case *model.EnumValue:
		return t.EnumValue(v)
	}
	return nil, errors.Newf(errors.CodeNotSupported, "cannot transcode %T", e)
}

func (t *Transcoder) Compound(c *model.Compound) (*model.Compound, error) {
	return findOrTranscode(t, c, t.compound)
}

func (t *Transcoder) compound(c *model.Compound) (*model.Compound, error) {
	out := &model.Compound{
		ReferableElement: t.referable(&c.ReferableElement, false),
		Include:          c.Include,
		Namespace:        c.Namespace,
		Prot:             c.Prot,
		Brief:            c.Brief,
		Description:      c.Description,
		Sections:         copySections(c.Sections),
	}
	for _, m := range c.Members {
		tm, err := t.Member(m)
		if err != nil {
			return nil, err
		}
		out.Members = append(out.Members, tm)
	}
	for _, inner := range c.InnerClasses {
		ti, err := t.innerTypeRef(inner)
		if err != nil {
			return nil, err
		}
		out.InnerClasses = append(out.InnerClasses, ti)
	}
	values, err := t.enumValues(c.EnumValues)
	if err != nil {
		return nil, err
	}
	out.EnumValues = values
	return out, nil
}

func (t *Transcoder) Member(m *model.Member) (*model.Member, error) {
	return findOrTranscode(t, m, t.member)
}

func (t *Transcoder) member(m *model.Member) (*model.Member, error) {
	out := &model.Member{
		ReferableElement: t.referable(&m.ReferableElement, true),
		Include:          m.Include,
		Namespace:        m.Namespace,
		Prot:             m.Prot,
		Definition:       m.Definition,
		Args:             m.Args,
		Initializer:      m.Initializer,
		Brief:            m.Brief,
		Description:      m.Description,
		Sections:         copySections(m.Sections),
		Static:           m.Static,
		Const:            m.Const,
		Constexpr:        m.Constexpr,
		Deleted:          m.Deleted,
		Default:          m.Default,
	}
	for _, p := range m.Params {
		out.Params = append(out.Params, t.parameter(p))
	}
	for _, e := range m.Exceptions {
		out.Exceptions = append(out.Exceptions, &model.ThrowsClause{
			Type:        t.typeRef(e.Type),
			Description: e.Description,
		})
	}
	if m.Returns != nil {
		ret := &model.ReturnValue{Type: t.typeRef(m.Returns.Type), Description: m.Returns.Description}
		if t.rules.DropReturn == nil || !t.rules.DropReturn(ret) {
			out.Returns = ret
		}
	}
	values, err := t.enumValues(m.EnumValues)
	if err != nil {
		return nil, err
	}
	out.EnumValues = values
	return out, nil
}

func (t *Transcoder) EnumValue(v *model.EnumValue) (*model.EnumValue, error) {
	return findOrTranscode(t, v, t.enumValue)
}

func (t *Transcoder) enumValue(v *model.EnumValue) (*model.EnumValue, error) {
	return &model.EnumValue{
		ReferableElement: t.referable(&v.ReferableElement, false),
		Initializer:      v.Initializer,
		Brief:            v.Brief,
		Description:      v.Description,
		Prot:             v.Prot,
	}, nil
}

func (t *Transcoder) enumValues(values []*model.EnumValue) ([]*model.EnumValue, error) {
	var out []*model.EnumValue
	for _, v := range values {
		tv, err := t.EnumValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, tv)
	}
	return out, nil
}

func (t *Transcoder) parameter(p *model.Parameter) *model.Parameter {
	return &model.Parameter{
		Type:         t.typeRef(p.Type),
		Name:         p.Name,
		Description:  p.Description,
		DefaultValue: p.DefaultValue,
		Prefix:       p.Prefix,
		Kind:         p.Kind,
	}
}

func (t *Transcoder) typeRef(ref *model.TypeRef) *model.TypeRef {
	if ref == nil {
		return nil
	}
	out := &model.TypeRef{
		ID:        t.convertID(ref.ID),
		Name:      ref.Name,
		Language:  t.rules.Target,
		Namespace: ref.Namespace,
		Kind:      ref.Kind,
		Prefix:    ref.Prefix,
		Suffix:    ref.Suffix,
		Prot:      ref.Prot,
		Returns:   t.typeRef(ref.Returns),
	}
	if ref.Nested != nil {
		out.Nested = make([]*model.TypeRef, 0, len(ref.Nested))
		for _, n := range ref.Nested {
			out.Nested = append(out.Nested, t.typeRef(n))
		}
	}
	if ref.Args != nil {
		out.Args = make([]*model.Parameter, 0, len(ref.Args))
		for _, a := range ref.Args {
			out.Args = append(out.Args, t.parameter(a))
		}
	}
	if t.rules.TypeRef != nil {
		t.rules.TypeRef(out)
	}
	return out
}

func (t *Transcoder) innerTypeRef(ref *model.InnerTypeRef) (*model.InnerTypeRef, error) {
	out := &model.InnerTypeRef{TypeRef: model.TypeRef{
		ID:        t.convertID(ref.ID),
		Name:      ref.Name,
		Language:  t.rules.Target,
		Namespace: ref.Namespace,
		Kind:      ref.Kind,
		Prot:      ref.Prot,
	}}
	if ref.Target != nil {
		target, err := t.Compound(ref.Target)
		if err != nil {
			return nil, err
		}
		out.Target = target
	}
	return out, nil
}

func (t *Transcoder) referable(e *model.ReferableElement, member bool) model.ReferableElement {
	out := model.ReferableElement{
		ID:       t.convertID(e.ID),
		Name:     e.Name,
		FullName: e.FullName,
		Language: t.rules.Target,
		Kind:     e.Kind,
	}
	if member && t.rules.MemberName != nil {
		out.Name = t.rules.MemberName(out.Name)
		out.FullName = t.rules.MemberName(out.FullName)
	}
	return out
}

// convertID moves an id from the source to the target language.
func (t *Transcoder) convertID(id string) string {
	if id == "" {
		return ""
	}
	id = strings.TrimPrefix(id, t.rules.Source+"-")
	return t.rules.Target + "-" + id
}

// findOrTranscode returns the registered target version of e or creates it.
func findOrTranscode[E model.Element](t *Transcoder, e E, transcode func(E) (E, error)) (E, error) {
	var zero E
	base := e.Base()
	existing, err := t.reg.Find(base.FullName, registry.FindOptions{
		Kind:     base.Kind,
		Lang:     t.rules.Target,
		TargetID: t.convertID(base.ID),
	})
	if err != nil {
		return zero, err
	}
	if existing != nil {
		found, ok := existing.(E)
		if !ok {
			return zero, errors.Newf(errors.CodeInternal, "transcoded %s is a %T, not a %T", existing.Base().ID, existing, e)
		}
		return found, nil
	}

	out, err := transcode(e)
	if err != nil {
		return zero, err
	}
	if err := t.reg.Append(out); err != nil {
		return zero, err
	}
	observability.TranscodedTotal.WithLabelValues(t.rules.Source, t.rules.Target).Inc()
	slog.Debug("transcoded element", "id", out.Base().ID, "source", t.rules.Source, "target", t.rules.Target)
	return out, nil
}

func copySections(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
