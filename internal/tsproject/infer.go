package tsproject

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/sincro/ngscan/internal/project"
)

// signalConstructors maps Angular reactive constructors to the wrapper type
// their call produces.
var signalConstructors = map[string]string{
	"signal":         "WritableSignal",
	"computed":       "Signal",
	"input":          "InputSignal",
	"input.required": "InputSignal",
	"model":          "ModelSignal",
	"model.required": "ModelSignal",
	"output":         "OutputEmitterRef",
}

// infer derives the type of an unannotated initializer.
func (p *Project) infer(value *sitter.Node, s *scope) *tsType {
	if value == nil {
		return p.unknown()
	}
	src := s.file.content

	switch value.Type() {
	case "string", "template_string":
		return p.primitive(kindString)
	case "number":
		return p.primitive(kindNumber)
	case "true", "false":
		return p.primitive(kindBoolean)

	case "unary_expression":
		switch op := value.ChildByFieldName("operator"); {
		case op != nil && op.Content(src) == "!":
			return p.primitive(kindBoolean)
		case op != nil && (op.Content(src) == "-" || op.Content(src) == "+"):
			return p.primitive(kindNumber)
		}
		return p.unknown()

	case "parenthesized_expression", "satisfies_expression", "non_null_expression":
		return p.infer(firstNamed(value), s)

	case "as_expression":
		children := namedChildren(value)
		if len(children) == 2 {
			return p.build(children[1], s)
		}
		return p.unknown()

	case "array":
		elements := namedChildren(value)
		if len(elements) == 0 {
			return p.array(p.unknown())
		}
		return p.array(p.infer(elements[0], s))

	case "object":
		obj := value
		return &tsType{
			id:   p.freshID(),
			key:  fmt.Sprintf("{}@%s:%d", s.file.path, value.StartByte()),
			kind: kindObject,
			members: func() []project.Member {
				return p.objectLiteralMembers(obj, s)
			},
		}

	case "arrow_function":
		if body := value.ChildByFieldName("body"); body != nil && body.Type() != "statement_block" {
			return p.infer(body, s)
		}
		return p.unknown()

	case "new_expression":
		ctor := value.ChildByFieldName("constructor")
		args := p.typeArguments(value.ChildByFieldName("type_arguments"), s)
		if ctor != nil && ctor.Type() == "identifier" {
			return p.named(ctor.Content(src), args, s)
		}
		return p.unknown()

	case "call_expression":
		return p.inferCall(value, s)
	}

	return p.unknown()
}

// inferCall recognizes direct calls to the signal constructors. The payload
// is the explicit type argument, or else the type of the first argument.
func (p *Project) inferCall(call *sitter.Node, s *scope) *tsType {
	name := callee(call, s.file.content)
	wrapper, ok := signalConstructors[name]
	if !ok {
		return p.unknown()
	}

	var payload *tsType
	if args := p.typeArguments(call.ChildByFieldName("type_arguments"), s); len(args) > 0 {
		payload = args[0]
	} else if first := firstNamed(call.ChildByFieldName("arguments")); first != nil {
		payload = p.infer(first, s)
	} else {
		payload = p.unknown()
	}

	return p.reference(wrapper, []*tsType{payload})
}

func (p *Project) objectLiteralMembers(obj *sitter.Node, s *scope) []project.Member {
	src := s.file.content
	var members []project.Member
	for _, child := range namedChildren(obj) {
		switch child.Type() {
		case "pair":
			members = append(members, project.Member{
				Name: propertyName(child.ChildByFieldName("key"), src),
				Type: p.infer(child.ChildByFieldName("value"), s),
			})
		case "shorthand_property_identifier":
			members = append(members, project.Member{
				Name: child.Content(src),
				Type: p.unknown(),
			})
		}
	}
	return members
}

// callee returns the dotted name of the function a call expression invokes
// directly ("input.required"), or "" for any other callee shape.
func callee(call *sitter.Node, src []byte) string {
	if call == nil || call.Type() != "call_expression" {
		return ""
	}
	return dottedName(call.ChildByFieldName("function"), src)
}
