package tsproject

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// namedChildren returns the named children of n, comments excluded.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	result := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		result = append(result, child)
	}
	return result
}

// firstNamed returns the first non-comment named child of n.
func firstNamed(n *sitter.Node) *sitter.Node {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// childOfType returns the first direct child of n with the given type.
func childOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == typ {
			return child
		}
	}
	return nil
}

// hasToken reports whether n has a direct child token such as "?" or "static".
func hasToken(n *sitter.Node, token string) bool {
	return childOfType(n, token) != nil
}

// stringValue returns the contents of a string literal node without quotes.
func stringValue(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	if fragment := childOfType(n, "string_fragment"); fragment != nil {
		return fragment.Content(src)
	}
	return strings.Trim(n.Content(src), "\"'`")
}

// propertyName returns the text of a property name node, unquoting string keys.
func propertyName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	if n.Type() == "string" {
		return stringValue(n, src)
	}
	return n.Content(src)
}

// flatten collects the operands of a left-nested union or intersection.
func flatten(n *sitter.Node, typ string) []*sitter.Node {
	var result []*sitter.Node
	for _, child := range namedChildren(n) {
		if child.Type() == typ {
			result = append(result, flatten(child, typ)...)
			continue
		}
		result = append(result, child)
	}
	return result
}

// dottedName renders identifiers and member accesses on identifiers as
// "a.b.c". Anything else yields "".
func dottedName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier", "property_identifier", "type_identifier":
		return n.Content(src)
	case "member_expression", "nested_type_identifier", "nested_identifier":
		children := namedChildren(n)
		if len(children) != 2 {
			return ""
		}
		object := dottedName(children[0], src)
		if object == "" {
			return ""
		}
		return object + "." + children[1].Content(src)
	}
	return ""
}

// lastSegment returns the part of a dotted name after the final dot.
func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
