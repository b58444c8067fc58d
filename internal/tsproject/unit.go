package tsproject

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/sincro/ngscan/internal/project"
)

// unit implements project.Unit over a parsed file.
type unit struct {
	file    *sourceFile
	decls   []project.Declaration
	imports []project.Import
}

func (p *Project) newUnit(f *sourceFile) *unit {
	u := &unit{
		file:    f,
		decls:   make([]project.Declaration, 0, len(f.classes)),
		imports: make([]project.Import, 0, len(f.imports)),
	}
	for _, c := range f.classes {
		u.decls = append(u.decls, &classDeclaration{p: p, file: f, class: c})
	}
	for _, imp := range f.imports {
		u.imports = append(u.imports, project.Import{
			ModuleSpecifier: imp.specifier,
			ResolvedPath:    imp.resolved,
		})
	}
	return u
}

func (u *unit) Path() string                        { return u.file.path }
func (u *unit) Declarations() []project.Declaration { return u.decls }
func (u *unit) Imports() []project.Import           { return u.imports }

// classDeclaration implements project.Declaration for a class.
type classDeclaration struct {
	p     *Project
	file  *sourceFile
	class classNode
}

func (d *classDeclaration) Name() string     { return d.class.name }
func (d *classDeclaration) UnitPath() string { return d.file.path }

// Metadata returns the object literal passed to the decorator named
// attribute. A decorator without an object argument yields an empty block.
func (d *classDeclaration) Metadata(attribute string) (*project.MetadataBlock, bool) {
	for _, dec := range d.class.decorators {
		name, call := decoratorName(dec, d.file.content)
		if name != attribute {
			continue
		}
		block := &project.MetadataBlock{Attribute: attribute}
		if call != nil {
			block.Properties = metadataProperties(firstNamed(call.ChildByFieldName("arguments")), d.file.content)
		}
		return block, true
	}
	return nil, false
}

// Members lists the fields and setter accessors of the class in source order.
func (d *classDeclaration) Members() []project.ClassMember {
	body := d.class.node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	src := d.file.content
	s := &scope{file: d.file}

	var members []project.ClassMember
	var pending []string

	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "decorator":
			// Decorators written in the class body precede their member.
			name, _ := decoratorName(child, src)
			pending = append(pending, name)

		case "public_field_definition":
			members = append(members, d.field(child, pending, s))
			pending = nil

		case "method_definition":
			if hasToken(child, "set") {
				members = append(members, d.setter(child, pending, s))
			}
			pending = nil

		case "comment":
		default:
			if child.IsNamed() {
				pending = nil
			}
		}
	}
	return members
}

func (d *classDeclaration) field(n *sitter.Node, attributes []string, s *scope) project.ClassMember {
	src := d.file.content
	member := project.ClassMember{
		Name:       propertyName(n.ChildByFieldName("name"), src),
		Kind:       project.MemberField,
		Attributes: append([]string(nil), attributes...),
		Type:       d.p.fieldType(n, s),
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == "decorator" {
			name, _ := decoratorName(child, src)
			member.Attributes = append(member.Attributes, name)
		}
	}
	if value := n.ChildByFieldName("value"); value != nil {
		if name := callee(value, src); name != "" {
			member.Initializer = &project.CallSite{Callee: name}
		}
	}
	return member
}

// setter describes a set accessor by the type of its parameter.
func (d *classDeclaration) setter(n *sitter.Node, attributes []string, s *scope) project.ClassMember {
	member := project.ClassMember{
		Name:       propertyName(n.ChildByFieldName("name"), d.file.content),
		Kind:       project.MemberSetter,
		Attributes: append([]string(nil), attributes...),
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == "decorator" {
			name, _ := decoratorName(child, d.file.content)
			member.Attributes = append(member.Attributes, name)
		}
	}
	param := firstNamed(n.ChildByFieldName("parameters"))
	if param != nil {
		member.Type = d.p.build(param.ChildByFieldName("type"), s)
	} else {
		member.Type = d.p.unknown()
	}
	return member
}

// decoratorName returns the name of a decorator and, for the call form
// @Name(...), its call expression.
func decoratorName(dec *sitter.Node, src []byte) (string, *sitter.Node) {
	expr := firstNamed(dec)
	if expr == nil {
		return "", nil
	}
	if expr.Type() == "call_expression" {
		return lastSegment(dottedName(expr.ChildByFieldName("function"), src)), expr
	}
	return lastSegment(dottedName(expr, src)), nil
}

// metadataProperties reads the keys of an object literal. Values keep their
// source text; array values also list the text of each element.
func metadataProperties(obj *sitter.Node, src []byte) []project.MetadataProperty {
	if obj == nil || obj.Type() != "object" {
		return nil
	}

	var props []project.MetadataProperty
	for _, child := range namedChildren(obj) {
		switch child.Type() {
		case "pair":
			value := child.ChildByFieldName("value")
			if value == nil {
				continue
			}
			prop := project.MetadataProperty{
				Name: propertyName(child.ChildByFieldName("key"), src),
				Text: value.Content(src),
			}
			if value.Type() == "array" {
				prop.IsArray = true
				prop.Elements = make([]string, 0, value.NamedChildCount())
				for _, el := range namedChildren(value) {
					prop.Elements = append(prop.Elements, el.Content(src))
				}
			}
			props = append(props, prop)
		case "shorthand_property_identifier":
			name := child.Content(src)
			props = append(props, project.MetadataProperty{Name: name, Text: name})
		}
	}
	return props
}
