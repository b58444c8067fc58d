package schema

import (
	"encoding/json"
	"fmt"
)

// Definition is a document produced by an extraction: either a
// ComponentDefinition or a ModuleDefinition.
type Definition interface {
	DefinitionKind() Kind
	DefinitionName() string
	SourcePath() string
}

// ComponentIO describes one input or output member of a component.
type ComponentIO struct {
	Name string  `json:"name" yaml:"name"`
	Type *Schema `json:"type" yaml:"type"`
}

// ComponentDefinition describes a component declaration.
type ComponentDefinition struct {
	Kind           Kind          `json:"kind" yaml:"kind"`
	Name           string        `json:"name" yaml:"name"`
	Selector       string        `json:"selector,omitempty" yaml:"selector,omitempty"`
	Standalone     bool          `json:"standalone" yaml:"standalone"`
	Inputs         []ComponentIO `json:"inputs" yaml:"inputs"`
	Outputs        []ComponentIO `json:"outputs" yaml:"outputs"`
	SourceFilePath string        `json:"sourceFilePath" yaml:"sourceFilePath"`
}

func (c ComponentDefinition) DefinitionKind() Kind   { return KindComponent }
func (c ComponentDefinition) DefinitionName() string { return c.Name }
func (c ComponentDefinition) SourcePath() string     { return c.SourceFilePath }

// Input returns the input registered under name.
func (c ComponentDefinition) Input(name string) (ComponentIO, bool) {
	return findIO(c.Inputs, name)
}

// Output returns the output registered under name.
func (c ComponentDefinition) Output(name string) (ComponentIO, bool) {
	return findIO(c.Outputs, name)
}

func findIO(list []ComponentIO, name string) (ComponentIO, bool) {
	for _, io := range list {
		if io.Name == name {
			return io, true
		}
	}
	return ComponentIO{}, false
}

// ModuleDefinition describes a module declaration. DeclaredComponents holds
// every component reached through the module's import graph.
type ModuleDefinition struct {
	Kind               Kind                  `json:"kind" yaml:"kind"`
	Name               string                `json:"name" yaml:"name"`
	Declarations       []string              `json:"declarations" yaml:"declarations"`
	Imports            []string              `json:"imports" yaml:"imports"`
	Exports            []string              `json:"exports" yaml:"exports"`
	Providers          []string              `json:"providers" yaml:"providers"`
	DeclaredComponents []ComponentDefinition `json:"declaredComponents" yaml:"declaredComponents"`
	SourceFilePath     string                `json:"sourceFilePath" yaml:"sourceFilePath"`
}

func (m ModuleDefinition) DefinitionKind() Kind   { return KindModule }
func (m ModuleDefinition) DefinitionName() string { return m.Name }
func (m ModuleDefinition) SourcePath() string     { return m.SourceFilePath }

// Component returns the declared component registered under name.
func (m ModuleDefinition) Component(name string) (ComponentDefinition, bool) {
	for _, c := range m.DeclaredComponents {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentDefinition{}, false
}

// DecodeDefinition parses a JSON document into the definition named by its
// kind discriminator.
func DecodeDefinition(data []byte) (Definition, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read definition kind: %w", err)
	}

	switch head.Kind {
	case KindComponent:
		var c ComponentDefinition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode component definition: %w", err)
		}
		return &c, nil
	case KindModule:
		var m ModuleDefinition
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode module definition: %w", err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown definition kind %q", head.Kind)
	}
}
