package registry

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxref/internal/core/errors"
	"docxref/internal/engine/model"
)

func compound(id, name, fullName, lang, kind string) *model.Compound {
	return &model.Compound{ReferableElement: model.ReferableElement{
		ID: id, Name: name, FullName: fullName, Language: lang, Kind: kind,
	}}
}

func function(id, name, fullName string, params ...*model.Parameter) *model.Member {
	return &model.Member{
		ReferableElement: model.ReferableElement{ID: id, Name: name, FullName: fullName, Language: "cpp", Kind: "function"},
		Params:           params,
	}
}

func param(prefix, name, suffix string) *model.Parameter {
	return &model.Parameter{Type: &model.TypeRef{Language: "cpp", Prefix: prefix, Name: name, Suffix: suffix}}
}

func newTestRegistry(t *testing.T, elements ...model.Element) *Registry {
	t.Helper()
	r := New()
	for _, e := range elements {
		require.NoError(t, r.Append(e))
	}
	return r
}

func TestAppend_RequiresIDAndName(t *testing.T) {
	r := New()
	err := r.Append(compound("", "Thing", "Thing", "cpp", "class"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	err = r.Append(compound("cpp-thing", "", "", "cpp", "class"))
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestAppend_KeepsInsertionOrder(t *testing.T) {
	a := compound("cpp-a", "Thing", "A::Thing", "cpp", "class")
	b := compound("cpp-b", "Thing", "B::Thing", "cpp", "class")
	c := compound("cpp-c", "Other", "Other", "cpp", "class")
	r := newTestRegistry(t, a, b, c)

	assert.Equal(t, []model.Element{a, b, c}, r.Elements())
}

func TestFind_ByTargetID(t *testing.T) {
	a := compound("cpp-a", "Thing", "A::Thing", "cpp", "class")
	r := newTestRegistry(t, a)

	got, err := r.Find("Unrelated", FindOptions{TargetID: "cpp-a", Lang: "java"})
	require.NoError(t, err)
	assert.Same(t, a, got)

	got, err = r.Find("Thing", FindOptions{TargetID: "cpp-missing"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFind_NotFound(t *testing.T) {
	r := newTestRegistry(t, compound("cpp-a", "Thing", "A::Thing", "cpp", "class"))

	for _, name := range []string{"", "Missing", "B::Thing"} {
		got, err := r.Find(name, FindOptions{})
		require.NoError(t, err, name)
		assert.Nil(t, got, name)
	}
}

func TestFind_FullNameAndFilters(t *testing.T) {
	cls := compound("cpp-a", "Thing", "A::Thing", "cpp", "class")
	javaCls := compound("java-a", "Thing", "A.Thing", "java", "class")
	r := newTestRegistry(t, cls, javaCls)

	got, err := r.Find("A::Thing", FindOptions{})
	require.NoError(t, err)
	assert.Same(t, cls, got)

	got, err = r.Find("A.Thing", FindOptions{Lang: "java"})
	require.NoError(t, err)
	assert.Same(t, javaCls, got)

	got, err = r.Find("A::Thing", FindOptions{Kind: "struct"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFind_RelativeToNamespace(t *testing.T) {
	thing := compound("cpp-thing", "Thing", "A::B::Thing", "cpp", "class")
	r := newTestRegistry(t, thing)

	tests := []struct {
		name      string
		namespace string
		found     bool
	}{
		{"Thing", "A::B", true},
		{"Thing", "A::B::C", true},
		{"B::Thing", "A", true},
		{"Thing", "A", false},
		{"Thing", "X::Y", false},
	}
	for _, tt := range tests {
		got, err := r.Find(tt.name, FindOptions{Namespace: tt.namespace})
		require.NoError(t, err)
		if tt.found {
			assert.Same(t, thing, got, "%s in %s", tt.name, tt.namespace)
		} else {
			assert.Nil(t, got, "%s in %s", tt.name, tt.namespace)
		}
	}
}

func TestFind_Ambiguous(t *testing.T) {
	a := compound("cpp-a", "Thing", "A::Thing", "cpp", "class")
	b := compound("cpp-b", "Thing", "A::Thing", "cpp", "struct")
	r := newTestRegistry(t, a, b)

	got, err := r.Find("A::Thing", FindOptions{})
	assert.Nil(t, got)

	var ambiguous *AmbiguousLookupError
	require.True(t, stderrors.As(err, &ambiguous))
	assert.Equal(t, []model.Element{a, b}, ambiguous.Candidates)
	assert.True(t, errors.IsCode(err, errors.CodeAmbiguous))
}

func TestFind_PrefersExactNamespace(t *testing.T) {
	outer := compound("cpp-outer", "Thing", "A::Thing", "cpp", "class")
	inner := compound("cpp-inner", "Thing", "A::B::Thing", "cpp", "class")
	r := newTestRegistry(t, outer, inner)

	got, err := r.Find("Thing", FindOptions{Namespace: "A::B"})
	require.NoError(t, err)
	assert.Same(t, inner, got)
}

func TestFind_PrefersGlobalName(t *testing.T) {
	global := compound("cpp-global", "Thing", "Thing", "cpp", "class")
	scoped := compound("cpp-scoped", "Thing", "A::Thing", "cpp", "class")
	r := newTestRegistry(t, global, scoped)

	got, err := r.Find("Thing", FindOptions{Namespace: "A::B"})
	require.NoError(t, err)
	assert.Same(t, global, got)
}

func TestFind_Overloads(t *testing.T) {
	first := function("cpp-f1", "run", "Job::run", param("", "int", ""))
	second := function("cpp-f2", "run", "Job::run", param("const ", "std::string", " &"))
	none := function("cpp-f3", "run", "Job::run")
	r := newTestRegistry(t, first, second, none)

	_, err := r.Find("Job::run", FindOptions{})
	require.Error(t, err)

	got, err := r.Find("Job::run", FindOptions{AllowOverloads: true})
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = r.Find("Job::run(const std::string&)", FindOptions{})
	require.NoError(t, err)
	assert.Same(t, second, got)

	got, err = r.Find("Job::run( int )", FindOptions{})
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = r.Find("Job::run()", FindOptions{})
	require.NoError(t, err)
	assert.Same(t, none, got)

	got, err = r.Find("Job::run(double)", FindOptions{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSplitArgs(t *testing.T) {
	assert.Equal(t, []string{}, splitArgs("  "))
	assert.Equal(t, []string{"int"}, splitArgs(" int "))
	assert.Equal(t, []string{"std::map<int,std::string>", "const Foo&"}, splitArgs("std::map<int, std::string>, const Foo &"))
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"const Foo &":           "const Foo&",
		"  unsigned   int ":     "unsigned int",
		"std::vector< int > *":  "std::vector<int>*",
		"void (*)(int, double)": "void(*)(int,double)",
		"const std::string&":    "const std::string&",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeType(in), in)
	}
}

func TestShortNameAndSplit(t *testing.T) {
	assert.Equal(t, "Thing", ShortName("A::B::Thing"))
	assert.Equal(t, "Thing", ShortName("com.example.Thing"))
	assert.Equal(t, "Thing", ShortName("Thing"))
	assert.Equal(t, []string{"A", "B", "Thing"}, SplitNamespaces("A::B::Thing"))
	assert.Equal(t, []string{"com", "example"}, SplitNamespaces("com.example."))
}
