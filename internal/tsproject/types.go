package tsproject

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/sincro/ngscan/internal/project"
)

// maxInstantiationDepth bounds nested generic instantiations such as
// interface Grow<T> { next: Grow<T[]> }.
const maxInstantiationDepth = 32

type typeKind int

const (
	kindUnknown typeKind = iota
	kindString
	kindNumber
	kindBoolean
	kindArray
	kindUnion
	// kindObject is an anonymous structural type: a type literal or an
	// intersection.
	kindObject
	// kindDeclared is an interface, class or object type alias.
	kindDeclared
	// kindReference is a named type that could not be resolved in the
	// project, kept with its type arguments.
	kindReference
)

// tsType implements project.Type.
//
// Declared types carry a stable identity derived from their declaration and
// type arguments. Every other type gets a fresh identity when built, so two
// occurrences of string never look like a cycle to the resolver.
type tsType struct {
	id   project.TypeID
	key  string
	kind typeKind
	name string

	args     []*tsType
	elem     *tsType
	variants []*tsType
	members  func() []project.Member

	// backref marks the re-entry of a type alias being expanded; it shares
	// the identity of the outer expansion.
	backref bool
}

func (t *tsType) ID() project.TypeID { return t.id }
func (t *tsType) IsString() bool     { return t.kind == kindString }
func (t *tsType) IsNumber() bool     { return t.kind == kindNumber }
func (t *tsType) IsBoolean() bool    { return t.kind == kindBoolean }
func (t *tsType) IsArray() bool      { return t.kind == kindArray }
func (t *tsType) IsUnion() bool      { return t.kind == kindUnion }

func (t *tsType) IsObject() bool {
	return t.kind == kindObject || t.kind == kindDeclared
}

func (t *tsType) ArrayElementType() project.Type {
	if t.elem == nil {
		return nil
	}
	return t.elem
}

func (t *tsType) UnionMembers() []project.Type {
	return toTypes(t.variants)
}

func (t *tsType) NominalName() string { return t.name }

func (t *tsType) TypeArguments() []project.Type {
	return toTypes(t.args)
}

func (t *tsType) DeclaredMembers() ([]project.Member, bool) {
	if t.kind != kindDeclared {
		return nil, false
	}
	return t.members(), true
}

func (t *tsType) Properties() []project.Member {
	if t.members == nil {
		return nil
	}
	return t.members()
}

func (t *tsType) String() string {
	return t.key
}

func toTypes(list []*tsType) []project.Type {
	result := make([]project.Type, len(list))
	for i, t := range list {
		result[i] = t
	}
	return result
}

// scope is the environment a type expression is built in.
type scope struct {
	file   *sourceFile
	params map[string]*tsType
	// aliases are the transparent aliases currently being expanded.
	aliases []*aliasFrame
	depth   int
}

type aliasFrame struct {
	key string
	id  project.TypeID
}

func (s *scope) key() string {
	if len(s.params) == 0 {
		return ""
	}
	names := make([]string, 0, len(s.params))
	for name := range s.params {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + s.params[name].key
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// typeDecl is a named type declaration located in a file.
type typeDecl struct {
	file *sourceFile
	node *sitter.Node
	name string
}

func (d typeDecl) key() string {
	return d.file.path + "#" + d.name
}

type typeParam struct {
	name string
	def  *sitter.Node
}

var primitiveKeys = map[typeKind]string{
	kindString:  "string",
	kindNumber:  "number",
	kindBoolean: "boolean",
	kindUnknown: "unknown",
}

func (p *Project) primitive(kind typeKind) *tsType {
	return &tsType{id: p.freshID(), key: primitiveKeys[kind], kind: kind}
}

func (p *Project) unknown() *tsType {
	return p.primitive(kindUnknown)
}

func (p *Project) array(elem *tsType) *tsType {
	return &tsType{id: p.freshID(), key: elem.key + "[]", kind: kindArray, elem: elem}
}

func (p *Project) union(variants []*tsType) *tsType {
	keys := make([]string, len(variants))
	for i, v := range variants {
		keys[i] = v.key
	}
	return &tsType{id: p.freshID(), key: "(" + strings.Join(keys, "|") + ")", kind: kindUnion, variants: variants}
}

// reference builds a named type that is not declared in the project.
func (p *Project) reference(name string, args []*tsType) *tsType {
	return &tsType{
		id:   p.freshID(),
		key:  "ref:" + name + argsKey(args),
		kind: kindReference,
		name: name,
		args: args,
	}
}

func argsKey(args []*tsType) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = a.key
	}
	return "<" + strings.Join(keys, ",") + ">"
}

// fresh copies an anonymous type with new identities throughout. Declared
// types and alias re-entries are shared.
func (p *Project) fresh(t *tsType) *tsType {
	if t.kind == kindDeclared || t.backref {
		return t
	}
	c := *t
	c.id = p.freshID()
	if t.elem != nil {
		c.elem = p.fresh(t.elem)
	}
	if t.variants != nil {
		c.variants = make([]*tsType, len(t.variants))
		for i, v := range t.variants {
			c.variants[i] = p.fresh(v)
		}
	}
	if t.args != nil {
		c.args = make([]*tsType, len(t.args))
		for i, a := range t.args {
			c.args[i] = p.fresh(a)
		}
	}
	return &c
}

// build turns a type expression into a type.
func (p *Project) build(n *sitter.Node, s *scope) *tsType {
	if n == nil {
		return p.unknown()
	}
	src := s.file.content

	switch n.Type() {
	case "type_annotation", "parenthesized_type", "readonly_type", "asserts_annotation":
		return p.build(firstNamed(n), s)

	case "predefined_type":
		switch n.Content(src) {
		case "string":
			return p.primitive(kindString)
		case "number":
			return p.primitive(kindNumber)
		case "boolean":
			return p.primitive(kindBoolean)
		}
		return p.unknown()

	case "literal_type":
		return p.literal(firstNamed(n))

	case "array_type":
		return p.array(p.build(firstNamed(n), s))

	case "union_type":
		operands := flatten(n, "union_type")
		variants := make([]*tsType, len(operands))
		for i, op := range operands {
			variants[i] = p.build(op, s)
		}
		return p.union(variants)

	case "intersection_type":
		return p.intersection(flatten(n, "intersection_type"), s)

	case "object_type":
		body := n
		return &tsType{
			id:   p.freshID(),
			key:  fmt.Sprintf("{}@%s:%d%s", s.file.path, n.StartByte(), s.key()),
			kind: kindObject,
			members: func() []project.Member {
				return p.signatureMembers(body, s)
			},
		}

	case "type_identifier":
		return p.named(n.Content(src), nil, s)

	case "generic_type":
		nameNode := n.ChildByFieldName("name")
		args := p.typeArguments(n.ChildByFieldName("type_arguments"), s)
		if nameNode != nil && nameNode.Type() == "type_identifier" {
			return p.named(nameNode.Content(src), args, s)
		}
		return p.reference(dottedName(nameNode, src), args)

	case "nested_type_identifier":
		return p.reference(dottedName(n, src), nil)
	}

	return p.unknown()
}

// literal maps a literal type to its primitive.
func (p *Project) literal(n *sitter.Node) *tsType {
	if n == nil {
		return p.unknown()
	}
	switch n.Type() {
	case "string", "template_string":
		return p.primitive(kindString)
	case "number", "unary_expression":
		return p.primitive(kindNumber)
	case "true", "false":
		return p.primitive(kindBoolean)
	}
	return p.unknown()
}

func (p *Project) typeArguments(n *sitter.Node, s *scope) []*tsType {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	args := make([]*tsType, len(children))
	for i, child := range children {
		args[i] = p.build(child, s)
	}
	return args
}

// intersection merges the members of every object-like operand.
func (p *Project) intersection(operands []*sitter.Node, s *scope) *tsType {
	parts := make([]*tsType, len(operands))
	keys := make([]string, len(operands))
	for i, op := range operands {
		parts[i] = p.build(op, s)
		keys[i] = parts[i].key
	}
	return &tsType{
		id:   p.freshID(),
		key:  "(" + strings.Join(keys, "&") + ")",
		kind: kindObject,
		members: func() []project.Member {
			var members []project.Member
			for _, part := range parts {
				if part.IsObject() {
					members = append(members, part.Properties()...)
				}
			}
			return members
		},
	}
}

// named resolves a type name in scope.
func (p *Project) named(name string, args []*tsType, s *scope) *tsType {
	if len(args) == 0 {
		if bound, ok := s.params[name]; ok {
			return p.fresh(bound)
		}
	}

	if (name == "Array" || name == "ReadonlyArray") && len(args) == 1 {
		return p.array(args[0])
	}

	decl, ok := p.lookupType(s.file, name)
	if !ok {
		return p.reference(name, args)
	}

	switch decl.node.Type() {
	case "interface_declaration", "class_declaration", "abstract_class_declaration":
		return p.declared(decl, args, s)
	case "type_alias_declaration":
		if value := decl.node.ChildByFieldName("value"); value != nil && value.Type() == "object_type" {
			return p.declared(decl, args, s)
		}
		return p.expandAlias(decl, args, s)
	case "enum_declaration":
		return p.enum(decl)
	}
	return p.reference(name, args)
}

// declared instantiates an interface, class or object alias.
func (p *Project) declared(decl typeDecl, args []*tsType, s *scope) *tsType {
	depth := s.depth + 1
	if depth > maxInstantiationDepth {
		p.log.Debug("instantiation too deep", zap.String("type", decl.name), zap.String("unit", decl.file.path))
		return p.unknown()
	}

	bindings, bound := p.bind(decl, args, s)
	key := "decl:" + decl.key() + argsKey(bound)
	inner := &scope{file: decl.file, params: bindings, depth: depth}

	return &tsType{
		id:   project.TypeID(key),
		key:  key,
		kind: kindDeclared,
		name: decl.name,
		args: bound,
		members: func() []project.Member {
			return p.declarationMembers(decl, inner)
		},
	}
}

// expandAlias builds the value of a non-object type alias. A re-entry of an
// alias already being expanded yields a type sharing the outer identity.
func (p *Project) expandAlias(decl typeDecl, args []*tsType, s *scope) *tsType {
	key := decl.key()
	for _, frame := range s.aliases {
		if frame.key == key {
			return &tsType{id: frame.id, key: "alias:" + key, kind: kindUnknown, backref: true}
		}
	}

	frame := &aliasFrame{key: key, id: p.freshID()}
	bindings, _ := p.bind(decl, args, s)
	aliases := make([]*aliasFrame, len(s.aliases), len(s.aliases)+1)
	copy(aliases, s.aliases)
	inner := &scope{
		file:    decl.file,
		params:  bindings,
		aliases: append(aliases, frame),
		depth:   s.depth,
	}

	t := p.build(decl.node.ChildByFieldName("value"), inner)
	if t.kind == kindDeclared || t.backref {
		frame.id = t.id
	} else {
		t.id = frame.id
	}
	return t
}

// bind pairs the declaration's type parameters with args, falling back to
// parameter defaults and then to unknown.
func (p *Project) bind(decl typeDecl, args []*tsType, s *scope) (map[string]*tsType, []*tsType) {
	params := typeParams(decl.node, decl.file.content)
	if len(params) == 0 {
		return nil, nil
	}

	bindings := make(map[string]*tsType, len(params))
	bound := make([]*tsType, len(params))
	defaults := &scope{file: decl.file, params: bindings, depth: s.depth}

	for i, param := range params {
		switch {
		case i < len(args):
			bound[i] = args[i]
		case param.def != nil:
			bound[i] = p.build(param.def, defaults)
		default:
			bound[i] = p.unknown()
		}
		bindings[param.name] = bound[i]
	}
	return bindings, bound
}

func typeParams(n *sitter.Node, src []byte) []typeParam {
	list := n.ChildByFieldName("type_parameters")
	if list == nil {
		return nil
	}
	var params []typeParam
	for _, child := range namedChildren(list) {
		if child.Type() != "type_parameter" {
			continue
		}
		name := child.ChildByFieldName("name")
		if name == nil {
			continue
		}
		param := typeParam{name: name.Content(src)}
		if def := child.ChildByFieldName("value"); def != nil {
			param.def = firstNamed(def)
		}
		params = append(params, param)
	}
	return params
}

// enum maps an enum to string when any member has a string initializer,
// number otherwise.
func (p *Project) enum(decl typeDecl) *tsType {
	body := decl.node.ChildByFieldName("body")
	for _, member := range namedChildren(body) {
		if member.Type() != "enum_assignment" {
			continue
		}
		if value := member.ChildByFieldName("value"); value != nil {
			if value.Type() == "string" || value.Type() == "template_string" {
				return p.primitive(kindString)
			}
		}
	}
	return p.primitive(kindNumber)
}

// declarationMembers lists the data members of an interface, class or
// object alias. Only members written on the declaration itself are listed.
func (p *Project) declarationMembers(decl typeDecl, s *scope) []project.Member {
	switch decl.node.Type() {
	case "interface_declaration":
		return p.signatureMembers(decl.node.ChildByFieldName("body"), s)
	case "type_alias_declaration":
		return p.signatureMembers(decl.node.ChildByFieldName("value"), s)
	case "class_declaration", "abstract_class_declaration":
		return p.classMembers(decl.node.ChildByFieldName("body"), s)
	}
	return nil
}

// signatureMembers lists the property signatures of an object type or
// interface body.
func (p *Project) signatureMembers(body *sitter.Node, s *scope) []project.Member {
	src := s.file.content
	var members []project.Member
	for _, child := range namedChildren(body) {
		if child.Type() != "property_signature" {
			continue
		}
		name := propertyName(child.ChildByFieldName("name"), src)
		if name == "" {
			continue
		}
		members = append(members, project.Member{
			Name:     name,
			Type:     p.build(child.ChildByFieldName("type"), s),
			Optional: hasToken(child, "?"),
		})
	}
	return members
}

// classMembers lists the instance fields of a class body.
func (p *Project) classMembers(body *sitter.Node, s *scope) []project.Member {
	src := s.file.content
	var members []project.Member
	for _, child := range namedChildren(body) {
		if child.Type() != "public_field_definition" || hasToken(child, "static") {
			continue
		}
		name := propertyName(child.ChildByFieldName("name"), src)
		if name == "" {
			continue
		}
		members = append(members, project.Member{
			Name:     name,
			Type:     p.fieldType(child, s),
			Optional: hasToken(child, "?"),
		})
	}
	return members
}

// fieldType is the annotated type of a class field, or the type inferred
// from its initializer.
func (p *Project) fieldType(field *sitter.Node, s *scope) *tsType {
	if annotation := field.ChildByFieldName("type"); annotation != nil {
		return p.build(annotation, s)
	}
	if value := field.ChildByFieldName("value"); value != nil {
		return p.infer(value, s)
	}
	return p.unknown()
}

// lookupType finds the declaration a type name refers to in file, following
// named imports and re-exports.
func (p *Project) lookupType(file *sourceFile, name string) (typeDecl, bool) {
	return p.lookupLocal(file, name, make(map[string]bool))
}

func (p *Project) lookupLocal(file *sourceFile, name string, visited map[string]bool) (typeDecl, bool) {
	if node, ok := file.types[name]; ok {
		return typeDecl{file: file, node: node, name: name}, true
	}

	for _, imp := range file.imports {
		imported, ok := imp.names[name]
		if !ok {
			continue
		}
		if imp.resolved == "" {
			return typeDecl{}, false
		}
		target, err := p.file(imp.resolved)
		if err != nil {
			p.log.Debug("failed to load imported unit",
				zap.String("unit", imp.resolved),
				zap.Error(err))
			return typeDecl{}, false
		}
		return p.lookupExport(target, imported, visited)
	}
	return typeDecl{}, false
}

// lookupExport finds the declaration exported from file under name.
func (p *Project) lookupExport(file *sourceFile, name string, visited map[string]bool) (typeDecl, bool) {
	visitKey := file.path + "#" + name
	if visited[visitKey] {
		return typeDecl{}, false
	}
	visited[visitKey] = true

	if local, ok := file.exports[name]; ok {
		if node, ok := file.types[local]; ok {
			return typeDecl{file: file, node: node, name: local}, true
		}
		return p.lookupLocal(file, local, visited)
	}

	for _, re := range file.reexports {
		if re.resolved == "" {
			continue
		}
		local := name
		if re.names != nil {
			var ok bool
			if local, ok = re.names[name]; !ok {
				continue
			}
		}
		target, err := p.file(re.resolved)
		if err != nil {
			continue
		}
		if decl, ok := p.lookupExport(target, local, visited); ok {
			return decl, true
		}
	}
	return typeDecl{}, false
}
