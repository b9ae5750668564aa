// Package model holds the language-agnostic representation of documented API
// elements. Rendering code only reads these types; the resolver and the
// transcoder are the only writers after parsing.
package model

// Element is anything that can be the target of a reference.
type Element interface {
	Base() *ReferableElement
}

// ReferableElement carries the identity shared by all reference targets.
type ReferableElement struct {
	ID       string
	Name     string
	FullName string
	Language string
	Kind     string
}

func (e *ReferableElement) Base() *ReferableElement { return e }

// TypeRef is a parsed, possibly unresolved, usage of a type.
//
// Nested is nil when the type has no nested block and empty for `Foo<>`.
// Args is nil unless the reference describes a callable; Returns then holds the
// return type.
type TypeRef struct {
	ID        string
	Name      string
	Language  string
	Namespace string
	Kind      string

	Prefix  string
	Suffix  string
	Nested  []*TypeRef
	Args    []*Parameter
	Returns *TypeRef
	Prot    string
}

// Resolve points the reference at its target.
func (r *TypeRef) Resolve(target Element) {
	base := target.Base()
	r.ID = base.ID
	r.Kind = base.Kind
}

// IsResolved reports whether the reference carries a target id.
func (r *TypeRef) IsResolved() bool {
	return r != nil && r.ID != ""
}

// IsClosure reports whether the reference describes a callable type.
func (r *TypeRef) IsClosure() bool {
	return r != nil && r.Returns != nil
}

type Parameter struct {
	Type         *TypeRef
	Name         string
	Description  string
	DefaultValue string
	Prefix       string
	Kind         string
}

type ReturnValue struct {
	Type        *TypeRef
	Description string
}

type ThrowsClause struct {
	Type        *TypeRef
	Description string
}

// InnerTypeRef links a compound to a nested compound defined in another document.
type InnerTypeRef struct {
	TypeRef
	Target *Compound
}

type EnumValue struct {
	ReferableElement
	Initializer string
	Brief       string
	Description string
	Prot        string
}

// Compound is a documented container: class, struct, enum, protocol, namespace.
//
// Members never holds compounds. Nested classes and structs are listed in
// InnerClasses and are only reachable through InnerClasses[i].Target, which
// is set once resolution links the nested compound.
type Compound struct {
	ReferableElement

	Members      []*Member
	InnerClasses []*InnerTypeRef
	EnumValues   []*EnumValue

	Include   string
	Namespace string
	Prot      string

	Brief       string
	Description string
	Sections    map[string]string
}

// Member is a documented function, variable, property, typedef or nested enum.
type Member struct {
	ReferableElement

	Params     []*Parameter
	Returns    *ReturnValue
	Exceptions []*ThrowsClause
	EnumValues []*EnumValue

	Include     string
	Namespace   string
	Prot        string
	Definition  string
	Args        string
	Initializer string

	Brief       string
	Description string
	Sections    map[string]string

	Static    bool
	Const     bool
	Constexpr bool
	Deleted   bool
	Default   bool
}

// Params returns the parameters of callable elements, or nil.
func Params(e Element) []*Parameter {
	if m, ok := e.(*Member); ok {
		return m.Params
	}
	return nil
}
