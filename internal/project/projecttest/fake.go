// Package projecttest provides in-memory fakes of the project interfaces for
// tests of the extractors.
package projecttest

import (
	"fmt"
	"sync/atomic"

	"github.com/sincro/ngscan/internal/project"
)

var nextID atomic.Int64

func anonymousID(prefix string) project.TypeID {
	return project.TypeID(fmt.Sprintf("%s#%d", prefix, nextID.Add(1)))
}

// TypeKind selects the capability a fake type reports.
type TypeKind int

const (
	KindOpaque TypeKind = iota
	KindString
	KindNumber
	KindBoolean
	KindArray
	KindUnion
	KindObject
)

// Type is a configurable fake type handle.
type Type struct {
	Id       project.TypeID
	Kind     TypeKind
	Name     string
	Args     []project.Type
	Element  project.Type
	Members  []project.Type
	Declared []project.Member
	// HasDecl marks Declared as coming from a nominal structural declaration.
	HasDecl bool
	Props   []project.Member
}

func (t *Type) ID() project.TypeID { return t.Id }

func (t *Type) IsString() bool  { return t.Kind == KindString }
func (t *Type) IsNumber() bool  { return t.Kind == KindNumber }
func (t *Type) IsBoolean() bool { return t.Kind == KindBoolean }
func (t *Type) IsArray() bool   { return t.Kind == KindArray }
func (t *Type) IsUnion() bool   { return t.Kind == KindUnion }
func (t *Type) IsObject() bool  { return t.Kind == KindObject }

func (t *Type) ArrayElementType() project.Type { return t.Element }
func (t *Type) UnionMembers() []project.Type   { return t.Members }
func (t *Type) NominalName() string            { return t.Name }
func (t *Type) TypeArguments() []project.Type  { return t.Args }

func (t *Type) DeclaredMembers() ([]project.Member, bool) {
	return t.Declared, t.HasDecl
}

func (t *Type) Properties() []project.Member { return t.Props }

// String returns a fresh string type. Primitive occurrences are anonymous, so
// every call yields a new identity.
func String() *Type { return &Type{Id: anonymousID("string"), Kind: KindString} }

// Number returns a fresh number type.
func Number() *Type { return &Type{Id: anonymousID("number"), Kind: KindNumber} }

// Boolean returns a fresh boolean type.
func Boolean() *Type { return &Type{Id: anonymousID("boolean"), Kind: KindBoolean} }

// Opaque returns a type with no capabilities, e.g. a function type.
func Opaque() *Type { return &Type{Id: anonymousID("opaque"), Kind: KindOpaque} }

// ArrayOf returns a fresh array type.
func ArrayOf(elem project.Type) *Type {
	return &Type{Id: anonymousID("array"), Kind: KindArray, Element: elem}
}

// UnionOf returns a fresh union type.
func UnionOf(members ...project.Type) *Type {
	return &Type{Id: anonymousID("union"), Kind: KindUnion, Members: members}
}

// Generic returns a nominal reference with type arguments, e.g. Signal<string>.
func Generic(name string, args ...project.Type) *Type {
	return &Type{Id: anonymousID(name), Kind: KindObject, Name: name, Args: args}
}

// Interface returns a nominal declared structural type. Its members can be
// filled after creation to build self-references.
func Interface(name string, members ...project.Member) *Type {
	return &Type{
		Id:       project.TypeID("interface#" + name),
		Kind:     KindObject,
		Name:     name,
		Declared: members,
		HasDecl:  true,
	}
}

// Anonymous returns an object-like type without a structural declaration.
func Anonymous(props ...project.Member) *Type {
	return &Type{Id: anonymousID("anonymous"), Kind: KindObject, Props: props}
}

// Field is shorthand for a required member.
func Field(name string, t project.Type) project.Member {
	return project.Member{Name: name, Type: t}
}

// OptionalField is shorthand for an optional member.
func OptionalField(name string, t project.Type) project.Member {
	return project.Member{Name: name, Type: t, Optional: true}
}
