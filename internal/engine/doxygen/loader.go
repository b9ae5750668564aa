// # internal/engine/doxygen/loader.go

// Package doxygen loads Doxygen XML dumps into the documentation model.
//
// Each compounddef becomes a model.Compound with its members, enum values and
// inner class references. Declaration types are parsed with the type parser of
// the compound's language; references without a target id are queued on the
// Sink for resolution after all documents are loaded.
package doxygen

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docxref/internal/core/errors"
	"docxref/internal/engine/model"
	"docxref/internal/engine/traits"
	"docxref/internal/engine/typeparser"
	"docxref/internal/shared/observability"
)

// Sink receives everything a document contributes. resolver.Driver implements it.
type Sink interface {
	typeparser.UnresolvedSink
	Register(e model.Element) error
	InnerTypeRef(parent *model.Compound, ref *model.InnerTypeRef)
}

type Options struct {
	// ForceLanguage overrides the language attribute of every compound.
	ForceLanguage string
}

type Loader struct {
	opts Options
}

func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// LoadFile reads one XML document into sink.
func (l *Loader) LoadFile(ctx context.Context, path string, sink Sink) error {
	_, span := observability.Tracer.Start(ctx, "doxygen.LoadFile",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	start := time.Now()
	outcome := "ok"
	defer func() {
		observability.DocumentParseDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	f, err := os.Open(path)
	if err != nil {
		outcome = "error"
		return errors.AddContext(errors.Wrap(err, errors.CodeParseError, "open document"), errors.CtxPath, path)
	}
	defer f.Close()

	if err := l.Load(f, sink); err != nil {
		outcome = "error"
		span.RecordError(err)
		return errors.AddContext(err, errors.CtxPath, path)
	}
	return nil
}

// Load reads one XML document from r into sink. Documents whose root is not
// doxygen are rejected with a PARSE_ERROR.
func (l *Loader) Load(r io.Reader, sink Sink) error {
	root, err := parseTree(r)
	if err != nil {
		return errors.Wrap(err, errors.CodeParseError, "malformed document")
	}
	if root.name != "doxygen" {
		return errors.Newf(errors.CodeParseError, "not a doxygen document: root element %q", root.name)
	}

	for _, e := range root.elements() {
		l.loadElement(e, sink)
	}
	return nil
}

func (l *Loader) loadElement(e *element, sink Sink) {
	language := l.opts.ForceLanguage
	if language == "" {
		language = e.attr("language")
	}
	tag := traits.SafeLanguageTag(language)
	if tag == "" {
		return
	}
	t, ok := traits.Lookup(tag)
	if !ok {
		slog.Debug("skipping unknown language", "language", tag, "element", e.name)
		return
	}
	if e.name != "compounddef" {
		slog.Debug("unhandled element", "element", e.name)
		return
	}

	d := &document{
		traits: t,
		parser: typeparser.NewParser(t, sink),
		sink:   sink,
	}
	d.compound(e)
}

// document holds the per-language state used while loading one compound.
type document struct {
	traits *traits.Traits
	parser *typeparser.Parser
	sink   Sink
}

func (d *document) register(e model.Element) {
	if err := d.sink.Register(e); err != nil {
		slog.Warn("failed to register element", "language", d.traits.Tag, "id", e.Base().ID, "error", err)
	}
}

func (d *document) compound(e *element) *model.Compound {
	c := &model.Compound{
		ReferableElement: model.ReferableElement{
			ID:       d.traits.UniqueID(e.attr("id")),
			Language: d.traits.Tag,
			Kind:     e.attr("kind"),
		},
		Prot: e.attr("prot"),
	}
	c.Name, c.FullName, c.Namespace = d.traits.Names(e.childText("compoundname"), "", c.Kind)
	c.Include = findInclude(e)

	for _, memberdef := range e.findAll("sectiondef/memberdef") {
		if m := d.member(memberdef, c); m != nil {
			c.Members = append(c.Members, m)
		}
	}
	c.EnumValues = d.enumValues(e, c.FullName)

	brief := parseDescription(e.child("briefdescription"))
	detailed := parseDescription(e.child("detaileddescription"))
	c.Sections = popSections(detailed, d.traits)
	c.Brief, c.Description = selectDescriptions(brief, detailed, d.traits)

	for _, inner := range e.findAll("innerclass") {
		d.innerClass(c, inner)
	}

	d.register(c)
	return c
}

func (d *document) innerClass(parent *model.Compound, e *element) {
	ref := &model.InnerTypeRef{TypeRef: model.TypeRef{
		ID:        d.traits.UniqueID(e.attr("refid")),
		Name:      d.traits.CleanupName(e.text()),
		Language:  parent.Language,
		Namespace: parent.FullName,
		Prot:      e.attr("prot"),
	}}
	parent.InnerClasses = append(parent.InnerClasses, ref)
	d.sink.InnerTypeRef(parent, ref)
}

func (d *document) member(e *element, parent *model.Compound) *model.Member {
	if d.traits.Tag == traits.TagObjC {
		fixBlockMember(e)
	}

	m := &model.Member{
		ReferableElement: model.ReferableElement{
			ID:       d.traits.UniqueID(e.attr("id")),
			Language: d.traits.Tag,
			Kind:     e.attr("kind"),
		},
		Prot: e.attr("prot"),
	}
	m.Name, m.FullName, m.Namespace = d.traits.Names(e.childText("name"), parent.FullName, m.Kind)
	m.Include = findInclude(e)

	if d.traits.IsMemberBlacklisted(m.Kind, m.Name) {
		slog.Debug("skipping blacklisted member", "language", d.traits.Tag, "kind", m.Kind, "name", m.Name)
		return nil
	}

	brief := parseDescription(e.child("briefdescription"))
	detailed := parseDescription(e.child("detaileddescription"))

	m.Returns = d.returns(e, m, detailed.PopSection(NodeSection, "return"))
	m.Params = d.params(e, m, detailed.PopSection(NodeParameterList, "param"))
	m.Params = append(m.Params, d.templateParams(e, m, detailed.PopSection(NodeParameterList, "templateparam"))...)
	m.Exceptions = d.exceptions(m, detailed.PopSection(NodeParameterList, "exception"))
	m.Sections = popSections(detailed, d.traits)
	m.Brief, m.Description = selectDescriptions(brief, detailed, d.traits)

	m.Definition = e.childText("definition")
	m.Args = e.childText("argsstring")
	m.Initializer = strings.TrimSpace(e.childText("initializer"))
	m.EnumValues = d.enumValues(e, m.FullName)
	m.Static = e.attr("static") == "yes"
	m.Const = e.attr("const") == "yes"
	m.Constexpr = e.attr("constexpr") == "yes"

	switch d.traits.Tag {
	case traits.TagCpp:
		d.fixCppMember(m)
	case traits.TagObjC:
		fixEnclosedVisibility(m, parent)
	}

	d.register(m)
	return m
}

func (d *document) parseType(typeElement, arrayElement *element, namespace string) *model.TypeRef {
	if typeElement == nil {
		return nil
	}
	var array []typeparser.Fragment
	if arrayElement != nil {
		array = typeFragments(arrayElement)
	}
	return d.parser.Parse(typeFragments(typeElement), array, namespace)
}

// typeFragments flattens a type element into text and reference markers.
func typeFragments(e *element) []typeparser.Fragment {
	var out []typeparser.Fragment
	for _, c := range e.content {
		switch {
		case c.elem == nil:
			out = append(out, typeparser.Text(c.text))
		case c.elem.name == "ref":
			out = append(out, typeparser.Ref(c.elem.text(), c.elem.attr("refid"), c.elem.attr("kindref")))
		default:
			out = append(out, typeFragments(c.elem)...)
		}
	}
	return out
}

func (d *document) params(e *element, m *model.Member, docs *Node) []*model.Parameter {
	var params []*model.Parameter
	for _, p := range e.findAll("param") {
		param := &model.Parameter{
			Type:         d.parseType(p.child("type"), p.child("array"), m.Namespace),
			Name:         p.childText("declname"),
			DefaultValue: p.childText("defval"),
			Kind:         "param",
		}
		param.Description = parameterDescription(parameterItem(docs, param.Name), d.traits)
		params = append(params, param)
	}
	return params
}

// templateParams reads template parameters. Their documentation is keyed by
// the parameter type, as in `typename T`.
func (d *document) templateParams(e *element, m *model.Member, docs *Node) []*model.Parameter {
	var params []*model.Parameter
	for _, p := range e.findAll("templateparamlist/param") {
		param := &model.Parameter{
			Type:         d.parseType(p.child("type"), nil, m.Namespace),
			Name:         p.childText("declname"),
			DefaultValue: p.childText("defval"),
			Kind:         "tparam",
		}
		if param.Type != nil {
			param.Description = parameterDescription(parameterItem(docs, param.Type.Name), d.traits)
		}
		params = append(params, param)
	}
	return params
}

func (d *document) returns(e *element, m *model.Member, doc *Node) *model.ReturnValue {
	ref := d.parseType(e.child("type"), nil, m.Namespace)
	if ref == nil {
		return nil
	}
	return &model.ReturnValue{Type: ref, Description: plainAsciiDoc(doc, d.traits)}
}

func (d *document) exceptions(m *model.Member, docs *Node) []*model.ThrowsClause {
	if docs == nil {
		return nil
	}
	var out []*model.ThrowsClause
	for _, item := range docs.Find(NodeParameterItem) {
		names := item.Find(NodeParameterName)
		if len(names) == 0 {
			continue
		}
		ref := &model.TypeRef{Language: d.traits.Tag, Namespace: m.Namespace}
		if refs := names[0].Find(NodeRef); len(refs) > 0 {
			ref.ID = d.traits.UniqueID(refs[0].RefID)
			ref.Kind = refs[0].Name
			ref.Name = plainAsciiDoc(refs[0], d.traits)
		} else {
			ref.Name = names[0].Text
		}
		if ref.Name == "" {
			continue
		}
		out = append(out, &model.ThrowsClause{Type: ref, Description: parameterDescription(item, d.traits)})
		if ref.ID == "" {
			d.sink.UnresolvedRef(ref)
		}
	}
	return out
}

func (d *document) enumValues(e *element, parentName string) []*model.EnumValue {
	var out []*model.EnumValue
	for _, ev := range e.findAll("enumvalue") {
		v := &model.EnumValue{
			ReferableElement: model.ReferableElement{
				ID:       d.traits.UniqueID(ev.attr("id")),
				Language: d.traits.Tag,
				Kind:     "enumvalue",
			},
			Prot:        ev.attr("prot"),
			Initializer: strings.TrimSpace(ev.childText("initializer")),
		}
		v.Name, v.FullName, _ = d.traits.Names(ev.childText("name"), parentName, v.Kind)
		v.Brief, v.Description = selectDescriptions(
			parseDescription(ev.child("briefdescription")),
			parseDescription(ev.child("detaileddescription")),
			d.traits)
		if d.traits.Tag == traits.TagObjC {
			v.Prot = "public"
		}
		d.register(v)
		out = append(out, v)
	}
	return out
}

// findInclude prefers the documented include over the declaring file.
func findInclude(e *element) string {
	if inc := e.child("includes"); inc != nil {
		return inc.text()
	}
	loc := e.child("location")
	if loc == nil {
		return ""
	}
	if file := loc.attr("declfile"); file != "" {
		return file
	}
	return loc.attr("file")
}

var (
	defaultedRE = regexp.MustCompile(`=\s*default\s*$`)
	deletedRE   = regexp.MustCompile(`=\s*delete\s*$`)
)

func (d *document) fixCppMember(m *model.Member) {
	if m.Kind == "function" && m.Args != "" {
		m.Default = defaultedRE.MatchString(m.Args)
		m.Deleted = deletedRE.MatchString(m.Args)
	}
	if m.Kind == "typedef" && strings.HasPrefix(m.Definition, "using") {
		m.Kind = "alias"
	}
	if m.Kind == "typedef" && m.Args != "" {
		m.Params = append(m.Params, d.functionTypedefParams(m)...)
	}
}

// functionTypedefParams parses the argument list of a function pointer typedef,
// which the extractor only provides as text. Only top level separators split
// parameters.
func (d *document) functionTypedefParams(m *model.Member) []*model.Parameter {
	tokens := typeparser.Tokenize(d.traits, m.Args)
	for len(tokens) > 0 && isCategory(tokens[0], traits.Whitespace, traits.ArgsStart, traits.ArgsEnd) {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && isCategory(tokens[len(tokens)-1], traits.Whitespace, traits.ArgsEnd) {
		tokens = tokens[:len(tokens)-1]
	}

	var params []*model.Parameter
	for len(tokens) > 0 {
		var typeTokens []typeparser.Token
		depth := 0
		for len(tokens) > 0 && (depth > 0 || tokens[0].Category != traits.Separator) {
			switch tokens[0].Category {
			case traits.NestedStart, traits.ArgsStart:
				depth++
			case traits.NestedEnd, traits.ArgsEnd:
				depth--
			}
			typeTokens = append(typeTokens, tokens[0])
			tokens = tokens[1:]
		}
		if len(tokens) > 0 {
			tokens = tokens[1:]
		}
		if ref := d.parser.FromTokens(typeTokens, m.FullName); ref != nil {
			params = append(params, &model.Parameter{Type: ref})
		}
	}
	return params
}

func isCategory(t typeparser.Token, cats ...traits.TokenCategory) bool {
	return traits.Categories(cats).Has(t.Category)
}

// fixBlockMember rewrites block typedefs and properties so the block signature
// ends up in the type: `void(^)` with args `)(int a)` becomes `void(int a)`.
func fixBlockMember(e *element) {
	kind := e.attr("kind")
	if kind != "variable" && kind != "typedef" {
		return
	}
	typeElement := e.child("type")
	if typeElement == nil || len(typeElement.content) == 0 || typeElement.content[0].elem != nil {
		return
	}
	typeText := typeElement.content[0].text
	args := e.childText("argsstring")
	blockStart := strings.Index(typeText, "(^")
	argsStart := strings.Index(args, ")(")
	if blockStart < 0 || argsStart < 0 {
		return
	}

	typeElement.content[0] = content{text: typeText[:blockStart] + args[argsStart+1:]}
	e.attrs["kind"] = "block"
}

// fixEnclosedVisibility gives types declared inside a class the visibility of
// the class: nested declarations in a public header are always accessible.
func fixEnclosedVisibility(m *model.Member, parent *model.Compound) {
	switch m.Kind {
	case "enum", "typedef", "class", "protocol", "enumvalue":
	default:
		return
	}
	switch parent.Kind {
	case "class", "protocol", "enum":
		m.Prot = parent.Prot
	}
}
