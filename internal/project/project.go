// Package project defines the boundary between ngscan's extractors and the
// host that understands source code: the type oracle answering structural
// questions about types, and the unit loader handing out parsed source units.
//
// The extractors only ever query these interfaces. internal/tsproject provides
// an implementation backed by a TypeScript grammar; tests use small fakes.
package project

import "errors"

// ErrNotFound is returned (wrapped) by Loader.LoadUnit when a path does not
// name a loadable unit.
var ErrNotFound = errors.New("unit not found")

// TypeID is an opaque, comparable identity for a type handle.
//
// Nominal types (interfaces, classes, object type aliases) share one identity
// per declaration and type-argument list, so a self-referencing declaration
// is recognized when it is reached again. Anonymous types (primitives,
// arrays, unions, literal object types) get a distinct identity for every
// occurrence handed out.
type TypeID string

// Type is a handle on a type known to the host type checker.
type Type interface {
	ID() TypeID

	IsString() bool
	IsNumber() bool
	IsBoolean() bool
	IsArray() bool
	IsUnion() bool
	IsObject() bool

	// ArrayElementType is only meaningful when IsArray is true.
	ArrayElementType() Type
	// UnionMembers returns the member types in declaration order.
	UnionMembers() []Type

	// NominalName is the declared name of the type ("" for anonymous types).
	NominalName() string
	TypeArguments() []Type

	// DeclaredMembers returns the data members of the type's nominal
	// structural declaration (interface, type literal or class), in
	// declaration order, methods excluded. ok is false when the type has no
	// such declaration.
	DeclaredMembers() (members []Member, ok bool)

	// Properties returns the runtime-visible properties of an object-like
	// type that has no structural declaration of its own.
	Properties() []Member
}

// Member is one data member of a structural type.
type Member struct {
	Name     string
	Type     Type
	Optional bool
}

// Import is one import statement of a unit.
type Import struct {
	ModuleSpecifier string
	// ResolvedPath is the in-project unit the statement points at, or ""
	// when the loader could not resolve it.
	ResolvedPath string
}

// Resolved reports whether the import points at an in-project unit.
func (i Import) Resolved() bool {
	return i.ResolvedPath != ""
}

// Unit is one loaded source artifact.
type Unit interface {
	Path() string
	Declarations() []Declaration
	Imports() []Import
}

// Loader hands out units by path.
type Loader interface {
	LoadUnit(path string) (Unit, error)
}
