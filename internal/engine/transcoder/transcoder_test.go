package transcoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxref/internal/core/errors"
	"docxref/internal/engine/model"
	"docxref/internal/engine/registry"
	"docxref/internal/engine/traits"
	"docxref/internal/engine/typeparser"
)

func parser(t *testing.T, tag string) *typeparser.Parser {
	t.Helper()
	lang, ok := traits.Lookup(tag)
	require.True(t, ok)
	return typeparser.NewParser(lang, nil)
}

func referable(id, name, fullName, lang, kind string) model.ReferableElement {
	return model.ReferableElement{ID: id, Name: name, FullName: fullName, Language: lang, Kind: kind}
}

func TestTranscode_ObjCToSwift(t *testing.T) {
	p := parser(t, traits.TagObjC)
	reg := registry.New()

	initializer := &model.Member{
		ReferableElement: referable("objc-view_1a1", "initWithFrame:style:", "MYView.initWithFrame:style:", "objc", "function"),
		Params: []*model.Parameter{
			{Name: "title", Type: p.ParseText("nullable NSString *", "")},
			{Name: "animated", Type: p.ParseText("BOOL", "")},
		},
		Returns: &model.ReturnValue{Type: p.ParseText("void", "")},
	}
	delegate := &model.Member{
		ReferableElement: referable("objc-view_1a2", "delegate", "MYView.delegate", "objc", "property"),
		Returns:          &model.ReturnValue{Type: p.ParseText("id<MYDelegate> _Nullable", "")},
	}
	view := &model.Compound{
		ReferableElement: referable("objc-view", "MYView", "MYView", "objc", "class"),
		Members:          []*model.Member{initializer, delegate},
		Brief:            "A view.",
	}
	for _, e := range []model.Element{initializer, delegate, view} {
		require.NoError(t, reg.Append(e))
	}

	out, err := Transcode(view, "swift", reg)
	require.NoError(t, err)
	swiftView, ok := out.(*model.Compound)
	require.True(t, ok)

	assert.Equal(t, "swift-view", swiftView.ID)
	assert.Equal(t, "swift", swiftView.Language)
	assert.Equal(t, "A view.", swiftView.Brief)
	require.Len(t, swiftView.Members, 2)

	ctor := swiftView.Members[0]
	assert.Equal(t, "swift-view_1a1", ctor.ID)
	assert.Equal(t, "initWithFrame", ctor.Name)
	assert.Equal(t, "MYView.initWithFrame", ctor.FullName)
	assert.Nil(t, ctor.Returns)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, "String", ctor.Params[0].Type.Name)
	assert.Equal(t, "", ctor.Params[0].Type.Prefix)
	assert.Equal(t, "?", ctor.Params[0].Type.Suffix)
	assert.Equal(t, "Bool", ctor.Params[1].Type.Name)
	assert.Equal(t, "", ctor.Params[1].Type.Suffix)

	prop := swiftView.Members[1]
	require.NotNil(t, prop.Returns)
	assert.Equal(t, "MYDelegate", prop.Returns.Type.Name)
	assert.Nil(t, prop.Returns.Type.Nested)
	assert.Equal(t, "?", prop.Returns.Type.Suffix)

	// Source elements are left untouched.
	assert.Equal(t, "initWithFrame:style:", initializer.Name)
	assert.Equal(t, " *", initializer.Params[0].Type.Suffix)

	assert.Equal(t, 6, reg.Len())
	again, err := Transcode(view, "swift", reg)
	require.NoError(t, err)
	assert.Same(t, swiftView, again)
	assert.Equal(t, 6, reg.Len())
}

func TestTranscode_SwiftBlocksKeepTheirSignature(t *testing.T) {
	p := parser(t, traits.TagObjC)
	reg := registry.New()
	handler := &model.Member{
		ReferableElement: referable("objc-h", "handler", "MYView.handler", "objc", "property"),
		Returns:          &model.ReturnValue{Type: p.ParseText("void(BOOL finished)", "")},
	}
	require.NoError(t, reg.Append(handler))

	out, err := Transcode(handler, "swift", reg)
	require.NoError(t, err)
	ref := out.(*model.Member).Returns.Type
	require.True(t, ref.IsClosure())
	assert.Equal(t, "Void", ref.Returns.Name)
	require.Len(t, ref.Args, 1)
	assert.Equal(t, "Bool", ref.Args[0].Type.Name)
	assert.Equal(t, "finished", ref.Args[0].Name)
}

func TestTranscode_JavaToKotlin(t *testing.T) {
	p := parser(t, traits.TagJava)
	reg := registry.New()
	size := &model.Member{
		ReferableElement: referable("java-list_1a1", "sizes", "com.example.Store.sizes", "java", "function"),
		Params: []*model.Parameter{
			{Name: "limit", Type: p.ParseText("Integer", "")},
			{Name: "flags", Type: p.ParseText("List<Boolean>", "")},
		},
		Returns: &model.ReturnValue{Type: p.ParseText("long", "")},
	}
	require.NoError(t, reg.Append(size))

	out, err := Transcode(size, "kotlin", reg)
	require.NoError(t, err)
	m := out.(*model.Member)
	assert.Equal(t, "kotlin-list_1a1", m.ID)
	assert.Equal(t, "sizes", m.Name)
	assert.Equal(t, "Int", m.Params[0].Type.Name)
	assert.Equal(t, "List", m.Params[1].Type.Name)
	require.Len(t, m.Params[1].Type.Nested, 1)
	assert.Equal(t, "Boolean", m.Params[1].Type.Nested[0].Name)
	require.NotNil(t, m.Returns)
	assert.Equal(t, "Long", m.Returns.Type.Name)

	found, err := reg.Find("com.example.Store.sizes", registry.FindOptions{Lang: "kotlin"})
	require.NoError(t, err)
	assert.Same(t, m, found)
}

func TestTranscode_UnsupportedPair(t *testing.T) {
	c := &model.Compound{ReferableElement: referable("cpp-x", "X", "X", "cpp", "class")}

	_, err := Transcode(c, "swift", registry.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestPairs(t *testing.T) {
	assert.Equal(t, [][2]string{{"java", "kotlin"}, {"objc", "swift"}}, Pairs())
}

func TestSwiftSelectorName(t *testing.T) {
	assert.Equal(t, "initWithFrame", swiftSelectorName("initWithFrame:style:"))
	assert.Equal(t, "count", swiftSelectorName("count"))
	assert.Equal(t, "MYView.reload", swiftSelectorName("MYView.reload:"))
}
