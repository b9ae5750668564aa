package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxref/internal/engine/model"
	"docxref/internal/engine/traits"
	"docxref/internal/engine/typeparser"
)

func newCompound(id, fullName, lang, kind string) *model.Compound {
	t, _ := traits.Lookup(lang)
	return &model.Compound{ReferableElement: model.ReferableElement{
		ID:       id,
		Name:     t.ShortName(fullName),
		FullName: fullName,
		Language: lang,
		Kind:     kind,
	}}
}

func TestResolve_ExactMatchInNamespace(t *testing.T) {
	d := NewDriver(nil)
	thing := newCompound("cpp-thing", "A::B::Thing", "cpp", "class")
	require.NoError(t, d.Register(thing))

	ref := &model.TypeRef{Name: "Thing", Language: "cpp", Namespace: "A::B"}
	d.UnresolvedRef(ref)

	stats := d.ResolveReferences(context.Background(), nil)

	assert.Equal(t, 1, stats.Exact)
	assert.Equal(t, "cpp-thing", ref.ID)
	assert.Equal(t, "class", ref.Kind)
	assert.Empty(t, d.Unresolved())
}

func TestResolve_PartialMatchWithoutNamespace(t *testing.T) {
	d := NewDriver(nil)
	thing := newCompound("cpp-thing", "A::B::Thing", "cpp", "class")
	require.NoError(t, d.Register(thing))

	ref := &model.TypeRef{Name: "Thing", Language: "cpp"}
	d.UnresolvedRef(ref)

	stats := d.ResolveReferences(context.Background(), nil)

	assert.Equal(t, 1, stats.Partial)
	assert.Equal(t, "cpp-thing", ref.ID)
	assert.Empty(t, d.Unresolved())
}

func TestResolve_AmbiguousPartialMatchStaysUnresolved(t *testing.T) {
	d := NewDriver(nil)
	require.NoError(t, d.Register(newCompound("cpp-a-thing", "A::Thing", "cpp", "class")))
	require.NoError(t, d.Register(newCompound("cpp-b-thing", "B::Thing", "cpp", "class")))

	ref := &model.TypeRef{Name: "Thing", Language: "cpp"}
	d.UnresolvedRef(ref)

	stats := d.ResolveReferences(context.Background(), nil)

	assert.Equal(t, 1, stats.Ambiguous)
	assert.Equal(t, 0, stats.Resolved())
	assert.Empty(t, ref.ID)
	assert.Equal(t, []*model.TypeRef{ref}, d.Unresolved())
	require.Len(t, d.Ambiguities(), 1)
	assert.Equal(t, []string{"A::Thing", "B::Thing"}, d.Ambiguities()[0].Candidates)
}

func TestResolve_ExactAmbiguityFallsBackToPartialMatch(t *testing.T) {
	d := NewDriver(nil)
	// Same full name, different kinds: the exact lookup is ambiguous.
	require.NoError(t, d.Register(newCompound("cpp-thing-class", "NS::Thing", "cpp", "class")))
	require.NoError(t, d.Register(newCompound("cpp-thing-struct", "NS::Thing", "cpp", "struct")))

	ref := &model.TypeRef{Name: "NS::Thing", Language: "cpp"}
	d.UnresolvedRef(ref)

	stats := d.ResolveReferences(context.Background(), nil)

	assert.Equal(t, 0, stats.Resolved())
	assert.Equal(t, 1, stats.Unresolved)
	assert.Empty(t, ref.ID)
}

func TestResolve_NotFound(t *testing.T) {
	d := NewDriver(nil)
	require.NoError(t, d.Register(newCompound("cpp-thing", "Thing", "cpp", "class")))

	ref := &model.TypeRef{Name: "Missing", Language: "cpp"}
	d.UnresolvedRef(ref)

	stats := d.ResolveReferences(context.Background(), nil)

	assert.Equal(t, 1, stats.Unresolved)
	assert.Equal(t, []string{"Missing"}, d.UnresolvedNames())
}

func TestResolve_Incremental(t *testing.T) {
	d := NewDriver(nil)
	resolved := &model.TypeRef{Name: "First", Language: "java"}
	later := &model.TypeRef{Name: "Second", Language: "java"}
	d.UnresolvedRef(resolved)
	d.UnresolvedRef(later)
	require.NoError(t, d.Register(newCompound("java-first", "com.example.First", "java", "class")))

	stats := d.ResolveReferences(context.Background(), nil)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Resolved())
	assert.Equal(t, []*model.TypeRef{later}, d.Unresolved())

	require.NoError(t, d.Register(newCompound("java-second", "com.example.Second", "java", "class")))
	stats = d.ResolveReferences(context.Background(), nil)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Partial)
	assert.Equal(t, "java-second", later.ID)
	assert.Equal(t, "java-first", resolved.ID)
	assert.Empty(t, d.Unresolved())

	stats = d.ResolveReferences(context.Background(), nil)
	assert.Equal(t, 0, stats.Processed)
}

func TestResolve_AlreadyResolvedByID(t *testing.T) {
	d := NewDriver(nil)
	thing := newCompound("cpp-thing", "Thing", "cpp", "class")
	require.NoError(t, d.Register(thing))

	ref := &model.TypeRef{Name: "Renamed", Language: "cpp", ID: "cpp-thing"}
	target, outcome := d.Resolve(ref)

	assert.Same(t, thing, target)
	assert.Equal(t, OutcomeExact, outcome)
}

func TestResolve_InnerTypeRefs(t *testing.T) {
	d := NewDriver(nil)
	parent := newCompound("cpp-outer", "Outer", "cpp", "class")
	nested := newCompound("cpp-outer-inner", "Outer::Inner", "cpp", "class")
	nested.Prot = "public"
	require.NoError(t, d.Register(parent))
	require.NoError(t, d.Register(nested))

	inner := &model.InnerTypeRef{TypeRef: model.TypeRef{Name: "Outer::Inner", Language: "cpp", ID: "cpp-outer-inner", Prot: "protected"}}
	missing := &model.InnerTypeRef{TypeRef: model.TypeRef{Name: "Outer::Gone", Language: "cpp", ID: "cpp-outer-gone"}}
	parent.InnerClasses = append(parent.InnerClasses, inner, missing)
	d.InnerTypeRef(parent, inner)
	d.InnerTypeRef(parent, missing)

	progress := &LogProgress{}
	stats := d.ResolveReferences(context.Background(), progress)

	assert.Equal(t, 2, stats.Processed)
	assert.Same(t, nested, inner.Target)
	assert.Equal(t, "protected", nested.Prot)
	assert.Nil(t, missing.Target)
	require.Len(t, d.Unresolved(), 1)
	assert.Equal(t, "Outer::Gone", d.Unresolved()[0].Name)

	done, total := progress.Counts()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)
}

func TestResolve_ParsedTypesThroughDriver(t *testing.T) {
	d := NewDriver(nil)
	p := typeparser.NewParser(traits.Cpp, d)

	ref := p.ParseText("const std::vector<Coordinate> &", "geo")
	require.NotNil(t, ref)
	require.Len(t, ref.Nested, 1)
	require.Len(t, d.Unresolved(), 1)

	require.NoError(t, d.Register(newCompound("cpp-geo-coordinate", "geo::Coordinate", "cpp", "struct")))
	stats := d.ResolveReferences(context.Background(), Progresses{&LogProgress{Every: 1}, MetricsProgress{}})

	assert.Equal(t, 1, stats.Exact)
	assert.Equal(t, "cpp-geo-coordinate", ref.Nested[0].ID)
	assert.Equal(t, "struct", ref.Nested[0].Kind)
	assert.Empty(t, ref.ID)
}

func TestResolve_PartialMatchUsesReferenceLanguageSeparator(t *testing.T) {
	d := NewDriver(nil)
	require.NoError(t, d.Register(newCompound("cpp-thing", "A::Thing", "cpp", "class")))
	require.NoError(t, d.Register(newCompound("java-thing", "com.acme.Thing", "java", "class")))

	cppRef := &model.TypeRef{Name: "Thing", Language: "cpp"}
	javaRef := &model.TypeRef{Name: "Thing", Language: "java"}
	d.UnresolvedRef(cppRef)
	d.UnresolvedRef(javaRef)

	stats := d.ResolveReferences(context.Background(), nil)

	assert.Equal(t, 2, stats.Partial)
	assert.Zero(t, stats.Ambiguous)
	assert.Equal(t, "cpp-thing", cppRef.ID)
	assert.Equal(t, "java-thing", javaRef.ID)
	assert.Empty(t, d.Ambiguities())
	assert.Empty(t, d.Unresolved())
}
