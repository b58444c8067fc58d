package projecttest

import (
	"fmt"

	"github.com/sincro/ngscan/internal/project"
)

// Declaration is a fake decorated class.
type Declaration struct {
	DeclName string
	Path     string
	Blocks   []*project.MetadataBlock
	Fields   []project.ClassMember
}

func (d *Declaration) Name() string     { return d.DeclName }
func (d *Declaration) UnitPath() string { return d.Path }

func (d *Declaration) Metadata(attribute string) (*project.MetadataBlock, bool) {
	for _, b := range d.Blocks {
		if b.Attribute == attribute {
			return b, true
		}
	}
	return nil, false
}

func (d *Declaration) Members() []project.ClassMember { return d.Fields }

// Unit is a fake source unit.
type Unit struct {
	UnitPath string
	Decls    []project.Declaration
	Imps     []project.Import
}

func (u *Unit) Path() string                        { return u.UnitPath }
func (u *Unit) Declarations() []project.Declaration { return u.Decls }
func (u *Unit) Imports() []project.Import           { return u.Imps }

// Loader serves fake units from memory and counts loads per path.
type Loader struct {
	Units map[string]*Unit
	Loads map[string]int
}

// NewLoader registers the given units by path.
func NewLoader(units ...*Unit) *Loader {
	l := &Loader{Units: make(map[string]*Unit), Loads: make(map[string]int)}
	for _, u := range units {
		l.Units[u.UnitPath] = u
	}
	return l
}

func (l *Loader) LoadUnit(path string) (project.Unit, error) {
	l.Loads[path]++
	u, ok := l.Units[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, project.ErrNotFound)
	}
	return u, nil
}

// Component builds a declaration carrying a @Component block.
func Component(path, name string, props []project.MetadataProperty, members ...project.ClassMember) *Declaration {
	return &Declaration{
		DeclName: name,
		Path:     path,
		Blocks:   []*project.MetadataBlock{{Attribute: "Component", Properties: props}},
		Fields:   members,
	}
}

// Module builds a declaration carrying an @NgModule block.
func Module(path, name string, props ...project.MetadataProperty) *Declaration {
	return &Declaration{
		DeclName: name,
		Path:     path,
		Blocks:   []*project.MetadataBlock{{Attribute: "NgModule", Properties: props}},
	}
}

// Text is a scalar metadata property.
func Text(name, text string) project.MetadataProperty {
	return project.MetadataProperty{Name: name, Text: text}
}

// List is an array-literal metadata property.
func List(name string, elements ...string) project.MetadataProperty {
	text := "["
	for i, e := range elements {
		if i > 0 {
			text += ", "
		}
		text += e
	}
	text += "]"
	return project.MetadataProperty{Name: name, Text: text, IsArray: true, Elements: elements}
}

// Import is a resolved import statement.
func Import(specifier, resolved string) project.Import {
	return project.Import{ModuleSpecifier: specifier, ResolvedPath: resolved}
}
