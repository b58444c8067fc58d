// Package schema defines the serializable descriptions produced by ngscan:
// the canonical ValidationSchema tree and the component / module definitions
// that carry it.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind discriminates schema variants and definition documents.
type Kind string

const (
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindArray    Kind = "array"
	KindUnion    Kind = "union"
	KindObject   Kind = "object"
	KindUnknown  Kind = "unknown"
	KindCircular Kind = "circular"

	KindComponent Kind = "component"
	KindModule    Kind = "module"
)

// IsSchemaKind reports whether k names a ValidationSchema variant.
func (k Kind) IsSchemaKind() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindArray, KindUnion, KindObject, KindUnknown, KindCircular:
		return true
	}
	return false
}

// Schema is the ValidationSchema tagged variant. Only the fields belonging to
// Kind are meaningful: Element for arrays, Variants for unions, Properties and
// Required for objects.
type Schema struct {
	Kind       Kind
	Element    *Schema
	Variants   []*Schema
	Properties Properties
	Required   []string
}

// Property is one named entry of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties is an ordered name→schema mapping. Declaration order is kept
// through JSON and YAML encoding.
type Properties []Property

// Get returns the schema registered under name.
func (p Properties) Get(name string) (*Schema, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return nil, false
}

// Names returns the property names in order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for _, prop := range p {
		names = append(names, prop.Name)
	}
	return names
}

func String() *Schema   { return &Schema{Kind: KindString} }
func Number() *Schema   { return &Schema{Kind: KindNumber} }
func Boolean() *Schema  { return &Schema{Kind: KindBoolean} }
func Unknown() *Schema  { return &Schema{Kind: KindUnknown} }
func Circular() *Schema { return &Schema{Kind: KindCircular} }

// Array creates an array schema over element.
func Array(element *Schema) *Schema {
	return &Schema{Kind: KindArray, Element: element}
}

// Union creates a union schema. Variants keep the given order and are not deduplicated.
func Union(variants ...*Schema) *Schema {
	if variants == nil {
		variants = []*Schema{}
	}
	return &Schema{Kind: KindUnion, Variants: variants}
}

// Object creates an object schema.
func Object(properties Properties, required []string) *Schema {
	if properties == nil {
		properties = Properties{}
	}
	if required == nil {
		required = []string{}
	}
	return &Schema{Kind: KindObject, Properties: properties, Required: required}
}

// IsPrimitive reports whether the schema is a string, number or boolean leaf.
func (s *Schema) IsPrimitive() bool {
	if s == nil {
		return false
	}
	return s.Kind == KindString || s.Kind == KindNumber || s.Kind == KindBoolean
}

// Validate checks the structural invariants of the tree: known kinds, present
// composite children and required names that exist as properties.
func (s *Schema) Validate() error {
	if s == nil {
		return fmt.Errorf("schema is nil")
	}
	switch s.Kind {
	case KindString, KindNumber, KindBoolean, KindUnknown, KindCircular:
		return nil
	case KindArray:
		if s.Element == nil {
			return fmt.Errorf("array schema has no element")
		}
		return s.Element.Validate()
	case KindUnion:
		for i, v := range s.Variants {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("union variant %d: %w", i, err)
			}
		}
		return nil
	case KindObject:
		for _, prop := range s.Properties {
			if err := prop.Schema.Validate(); err != nil {
				return fmt.Errorf("property %s: %w", prop.Name, err)
			}
		}
		for _, name := range s.Required {
			if _, ok := s.Properties.Get(name); !ok {
				return fmt.Errorf("required property %q is not declared", name)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown schema kind %q", s.Kind)
	}
}

// Equal reports whether two schema trees are structurally identical,
// including property and variant order.
func Equal(a, b *Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindArray:
		return Equal(a.Element, b.Element)
	case KindUnion:
		if len(a.Variants) != len(b.Variants) {
			return false
		}
		for i := range a.Variants {
			if !Equal(a.Variants[i], b.Variants[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Properties) != len(b.Properties) || len(a.Required) != len(b.Required) {
			return false
		}
		for i := range a.Properties {
			if a.Properties[i].Name != b.Properties[i].Name || !Equal(a.Properties[i].Schema, b.Properties[i].Schema) {
				return false
			}
		}
		for i := range a.Required {
			if a.Required[i] != b.Required[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalJSON emits only the fields of the schema's variant. Object schemas
// always carry properties and required, even when empty.
func (s Schema) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindArray:
		return json.Marshal(struct {
			Kind    Kind    `json:"kind"`
			Element *Schema `json:"element"`
		}{s.Kind, s.Element})
	case KindUnion:
		variants := s.Variants
		if variants == nil {
			variants = []*Schema{}
		}
		return json.Marshal(struct {
			Kind     Kind      `json:"kind"`
			Variants []*Schema `json:"variants"`
		}{s.Kind, variants})
	case KindObject:
		properties := s.Properties
		if properties == nil {
			properties = Properties{}
		}
		required := s.Required
		if required == nil {
			required = []string{}
		}
		return json.Marshal(struct {
			Kind       Kind       `json:"kind"`
			Properties Properties `json:"properties"`
			Required   []string   `json:"required"`
		}{s.Kind, properties, required})
	default:
		return json.Marshal(struct {
			Kind Kind `json:"kind"`
		}{s.Kind})
	}
}

// UnmarshalJSON decodes a schema document, rejecting unknown kinds.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind       Kind       `json:"kind"`
		Element    *Schema    `json:"element"`
		Variants   []*Schema  `json:"variants"`
		Properties Properties `json:"properties"`
		Required   []string   `json:"required"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Kind.IsSchemaKind() {
		return fmt.Errorf("unknown schema kind %q", raw.Kind)
	}
	*s = Schema{Kind: raw.Kind}
	switch raw.Kind {
	case KindArray:
		s.Element = raw.Element
	case KindUnion:
		s.Variants = raw.Variants
		if s.Variants == nil {
			s.Variants = []*Schema{}
		}
	case KindObject:
		s.Properties = raw.Properties
		if s.Properties == nil {
			s.Properties = Properties{}
		}
		s.Required = raw.Required
		if s.Required == nil {
			s.Required = []string{}
		}
	}
	return nil
}

// MarshalJSON writes the properties as a JSON object in declaration order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(prop.Schema)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order of the document.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties must be a JSON object")
	}
	props := Properties{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected property key %v", tok)
		}
		var value Schema
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		props = append(props, Property{Name: name, Schema: &value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = props
	return nil
}

// MarshalYAML builds the node tree by hand so property order is preserved.
func (s Schema) MarshalYAML() (interface{}, error) {
	return s.yamlNode(), nil
}

func (s *Schema) yamlNode() *yaml.Node {
	if s == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		node.Content = append(node.Content, yamlScalar(key), value)
	}
	add("kind", yamlScalar(string(s.Kind)))

	switch s.Kind {
	case KindArray:
		add("element", s.Element.yamlNode())
	case KindUnion:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, v := range s.Variants {
			seq.Content = append(seq.Content, v.yamlNode())
		}
		if len(seq.Content) == 0 {
			seq.Style = yaml.FlowStyle
		}
		add("variants", seq)
	case KindObject:
		props := &yaml.Node{Kind: yaml.MappingNode}
		for _, prop := range s.Properties {
			props.Content = append(props.Content, yamlScalar(prop.Name), prop.Schema.yamlNode())
		}
		if len(props.Content) == 0 {
			props.Style = yaml.FlowStyle
		}
		add("properties", props)

		required := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, name := range s.Required {
			required.Content = append(required.Content, yamlScalar(name))
		}
		add("required", required)
	}
	return node
}

func yamlScalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
