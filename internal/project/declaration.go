package project

import "strings"

// Declaration is a named construct of a unit carrying attached metadata
// blocks (decorators), e.g. a component or module class.
type Declaration interface {
	Name() string
	UnitPath() string
	// Metadata returns the metadata block introduced by the given attribute
	// name, e.g. "Component" for @Component({...}).
	Metadata(attribute string) (*MetadataBlock, bool)
	Members() []ClassMember
}

// MetadataBlock is the literal configuration object attached to a declaration.
type MetadataBlock struct {
	Attribute  string
	Properties []MetadataProperty
}

// Lookup returns the property registered under name.
func (b *MetadataBlock) Lookup(name string) (MetadataProperty, bool) {
	if b == nil {
		return MetadataProperty{}, false
	}
	for _, p := range b.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return MetadataProperty{}, false
}

// MetadataProperty is one key of a metadata block. Text is the literal source
// text of the value; Elements holds the source text of each element when the
// value is an array literal.
type MetadataProperty struct {
	Name     string
	Text     string
	IsArray  bool
	Elements []string
}

// MemberKind tells how a class member is declared.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberSetter
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberSetter:
		return "setter"
	default:
		return "unknown"
	}
}

// ClassMember is a data member (field or setter accessor) of a declaration.
type ClassMember struct {
	Name       string
	Kind       MemberKind
	Attributes []string
	// Initializer is set when the member is initialized by a syntactically
	// direct call expression.
	Initializer *CallSite
	Type        Type
}

// HasAttribute reports whether the member carries the named attribute.
func (m ClassMember) HasAttribute(name string) bool {
	for _, a := range m.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// CallSite identifies the function called by an initializer, with member
// access kept in dotted form ("input.required").
type CallSite struct {
	Callee string
}

// StripQuotes removes every single and double quote from literal text.
func StripQuotes(text string) string {
	return strings.NewReplacer(`"`, "", `'`, "").Replace(text)
}
