package extractor

import (
	"github.com/sincro/ngscan/internal/project"
	"github.com/sincro/ngscan/internal/schema"
)

// ExtractComponent builds the definition of a component declaration.
// It never fails: a declaration without the expected metadata yields no
// selector, standalone false and whatever members can be found.
func (e *Extractor) ExtractComponent(decl project.Declaration) schema.ComponentDefinition {
	block, _ := decl.Metadata(e.opts.ComponentAttribute)

	var selector string
	if prop, ok := block.Lookup("selector"); ok {
		selector = project.StripQuotes(prop.Text)
	}

	standalone := false
	if prop, ok := block.Lookup("standalone"); ok {
		standalone = prop.Text == "true"
	}

	members := decl.Members()

	inputs := e.merge(
		e.attributeMembers(members, e.opts.InputAttribute),
		e.constructorMembers(members, e.inputCtors),
	)
	outputs := e.merge(
		e.attributeMembers(members, e.opts.OutputAttribute),
		e.constructorMembers(members, e.outputCtors),
	)

	return schema.ComponentDefinition{
		Kind:           schema.KindComponent,
		Name:           decl.Name(),
		Selector:       selector,
		Standalone:     standalone,
		Inputs:         inputs,
		Outputs:        outputs,
		SourceFilePath: decl.UnitPath(),
	}
}

// attributeMembers collects fields, then setter accessors, flagged with attribute.
func (e *Extractor) attributeMembers(members []project.ClassMember, attribute string) []schema.ComponentIO {
	var fields, setters []schema.ComponentIO
	for _, m := range members {
		if !m.HasAttribute(attribute) {
			continue
		}
		io := e.describe(m)
		switch m.Kind {
		case project.MemberField:
			fields = append(fields, io)
		case project.MemberSetter:
			setters = append(setters, io)
		}
	}
	return append(fields, setters...)
}

// constructorMembers collects fields initialized by a direct call to one of
// the recognized constructors. Calls through an alias are not recognized.
func (e *Extractor) constructorMembers(members []project.ClassMember, ctors map[string]struct{}) []schema.ComponentIO {
	var result []schema.ComponentIO
	for _, m := range members {
		if m.Kind != project.MemberField || m.Initializer == nil {
			continue
		}
		if _, ok := ctors[m.Initializer.Callee]; !ok {
			continue
		}
		result = append(result, e.describe(m))
	}
	return result
}

// describe resolves one member with its own Seen map.
func (e *Extractor) describe(m project.ClassMember) schema.ComponentIO {
	return schema.ComponentIO{
		Name: m.Name,
		Type: e.resolver.Resolve(m.Type),
	}
}

func (e *Extractor) merge(byAttribute, byConstructor []schema.ComponentIO) []schema.ComponentIO {
	merged := make([]schema.ComponentIO, 0, len(byAttribute)+len(byConstructor))

	if e.opts.Merge != MergeByName {
		merged = append(merged, byAttribute...)
		return append(merged, byConstructor...)
	}

	seen := make(map[string]struct{}, len(byAttribute)+len(byConstructor))
	for _, list := range [][]schema.ComponentIO{byAttribute, byConstructor} {
		for _, io := range list {
			if _, dup := seen[io.Name]; dup {
				continue
			}
			seen[io.Name] = struct{}{}
			merged = append(merged, io)
		}
	}
	return merged
}
