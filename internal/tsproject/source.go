package tsproject

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// sourceFile is a parsed TypeScript file and the index of its top-level
// declarations, imports and exports.
type sourceFile struct {
	path    string
	hash    string
	content []byte
	tree    *sitter.Tree
	root    *sitter.Node

	// types holds interface, class, type alias and enum declarations by name.
	types map[string]*sitter.Node
	// exports maps exported names to local names.
	exports   map[string]string
	classes   []classNode
	imports   []importDecl
	reexports []reexport
}

// classNode is a class declaration with every decorator attached to it,
// including those written before an export keyword.
type classNode struct {
	node       *sitter.Node
	name       string
	decorators []*sitter.Node
}

// importDecl is one import statement.
type importDecl struct {
	specifier string
	resolved  string
	// names maps local binding names to the names exported by the target.
	names map[string]string
}

// reexport is an "export ... from" statement. A nil names map stands for
// "export * from".
type reexport struct {
	specifier string
	resolved  string
	names     map[string]string
}

// awaits reports whether an unresolved import or re-export of f resolves to
// path under resolve.
func (f *sourceFile) awaits(path string, resolve func(from, specifier string) string) bool {
	for _, imp := range f.imports {
		if imp.resolved == "" && resolve(f.path, imp.specifier) == path {
			return true
		}
	}
	for _, re := range f.reexports {
		if re.resolved == "" && resolve(f.path, re.specifier) == path {
			return true
		}
	}
	return false
}

func newSourceFile(path, hash string, content []byte, tree *sitter.Tree) *sourceFile {
	f := &sourceFile{
		path:    path,
		hash:    hash,
		content: content,
		tree:    tree,
		root:    tree.RootNode(),
		types:   make(map[string]*sitter.Node),
		exports: make(map[string]string),
	}
	f.index()
	return f
}

func (f *sourceFile) index() {
	for _, child := range namedChildren(f.root) {
		switch child.Type() {
		case "import_statement":
			f.addImport(child)
		case "export_statement":
			f.addExport(child)
		default:
			f.addDeclaration(child, nil, false)
		}
	}
}

func (f *sourceFile) addDeclaration(n *sitter.Node, outer []*sitter.Node, exported bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(f.content)

	switch n.Type() {
	case "class_declaration", "abstract_class_declaration":
		decorators := append([]*sitter.Node(nil), outer...)
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil && child.Type() == "decorator" {
				decorators = append(decorators, child)
			}
		}
		f.classes = append(f.classes, classNode{node: n, name: name, decorators: decorators})
	case "interface_declaration", "type_alias_declaration", "enum_declaration":
	default:
		return
	}

	f.types[name] = n
	if exported {
		f.exports[name] = name
	}
}

func (f *sourceFile) addImport(n *sitter.Node) {
	imp := importDecl{
		specifier: stringValue(sourceNode(n), f.content),
		names:     make(map[string]string),
	}
	if imp.specifier == "" {
		return
	}

	if clause := childOfType(n, "import_clause"); clause != nil {
		for _, child := range namedChildren(clause) {
			switch child.Type() {
			case "identifier":
				imp.names[child.Content(f.content)] = "default"
			case "named_imports":
				for _, spec := range namedChildren(child) {
					if spec.Type() != "import_specifier" {
						continue
					}
					local, imported := specifierNames(spec, f.content)
					imp.names[local] = imported
				}
			}
		}
	}

	f.imports = append(f.imports, imp)
}

func (f *sourceFile) addExport(n *sitter.Node) {
	var decorators []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == "decorator" {
			decorators = append(decorators, child)
		}
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		f.addDeclaration(decl, decorators, true)
		if hasToken(n, "default") {
			if nameNode := decl.ChildByFieldName("name"); nameNode != nil {
				f.exports["default"] = nameNode.Content(f.content)
			}
		}
		return
	}

	clause := childOfType(n, "export_clause")
	source := sourceNode(n)

	if source == nil {
		// export { A, B as C }
		if clause != nil {
			for _, spec := range namedChildren(clause) {
				if spec.Type() != "export_specifier" {
					continue
				}
				exported, local := specifierNames(spec, f.content)
				f.exports[exported] = local
			}
		}
		return
	}

	if childOfType(n, "namespace_export") != nil {
		return
	}

	re := reexport{specifier: stringValue(source, f.content)}
	if clause != nil {
		re.names = make(map[string]string)
		for _, spec := range namedChildren(clause) {
			if spec.Type() != "export_specifier" {
				continue
			}
			exported, local := specifierNames(spec, f.content)
			re.names[exported] = local
		}
	}
	f.reexports = append(f.reexports, re)
}

// specifierNames returns the visible name and the original name of an
// import or export specifier ("a as b" gives "b", "a").
func specifierNames(spec *sitter.Node, src []byte) (visible, original string) {
	name := spec.ChildByFieldName("name")
	if name == nil {
		name = firstNamed(spec)
	}
	original = propertyName(name, src)
	visible = original
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		visible = propertyName(alias, src)
	}
	return visible, original
}

// sourceNode returns the module specifier string of an import or export.
func sourceNode(n *sitter.Node) *sitter.Node {
	if source := n.ChildByFieldName("source"); source != nil {
		return source
	}
	return childOfType(n, "string")
}
