// Package extractor turns component and module declarations into
// serializable definitions.
//
// A component declaration yields a ComponentDefinition describing its inputs
// and outputs. A module declaration yields a ModuleDefinition and, through a
// depth-first walk of its unit's import graph, every component reachable from
// it.
package extractor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sincro/ngscan/internal/project"
	"github.com/sincro/ngscan/internal/resolver"
	"github.com/sincro/ngscan/internal/schema"
)

// ErrNoDeclaration is returned when the root unit holds neither a component
// nor a module declaration.
var ErrNoDeclaration = errors.New("no component or module declaration found")

// MergeStrategy decides how attribute-flagged and constructor-initialized
// members are combined.
type MergeStrategy string

const (
	// MergeConcat appends both lists as they are; a member found by both
	// conventions is listed twice.
	MergeConcat MergeStrategy = "concat"
	// MergeByName keeps the first member of each name, attribute-flagged
	// members first.
	MergeByName MergeStrategy = "name"
)

// CycleMode selects how the module walk treats units it has already entered.
type CycleMode string

const (
	// CycleGuard visits every unit at most once per walk.
	CycleGuard CycleMode = "guard"
	// CycleUnguarded follows every import. An import cycle recurses until
	// the stack is exhausted.
	CycleUnguarded CycleMode = "unguarded"
)

// Options configures an Extractor. Zero values fall back to DefaultOptions.
type Options struct {
	ComponentAttribute string
	ModuleAttribute    string
	InputAttribute     string
	OutputAttribute    string

	// InputConstructors and OutputConstructors are the callee names whose
	// direct calls mark a field as an input or output.
	InputConstructors  []string
	OutputConstructors []string

	Merge  MergeStrategy
	Cycles CycleMode

	Resolver *resolver.Resolver
	Logger   *zap.Logger
}

// DefaultOptions returns the Angular conventions.
func DefaultOptions() Options {
	return Options{
		ComponentAttribute: "Component",
		ModuleAttribute:    "NgModule",
		InputAttribute:     "Input",
		OutputAttribute:    "Output",
		InputConstructors:  []string{"signal", "input", "input.required", "model", "model.required"},
		OutputConstructors: []string{"output"},
		Merge:              MergeConcat,
		Cycles:             CycleGuard,
	}
}

// Extractor extracts definitions from units served by a loader.
type Extractor struct {
	loader   project.Loader
	opts     Options
	resolver *resolver.Resolver
	log      *zap.Logger

	inputCtors  map[string]struct{}
	outputCtors map[string]struct{}
}

// New creates an extractor over loader.
func New(loader project.Loader, opts Options) *Extractor {
	def := DefaultOptions()
	if opts.ComponentAttribute == "" {
		opts.ComponentAttribute = def.ComponentAttribute
	}
	if opts.ModuleAttribute == "" {
		opts.ModuleAttribute = def.ModuleAttribute
	}
	if opts.InputAttribute == "" {
		opts.InputAttribute = def.InputAttribute
	}
	if opts.OutputAttribute == "" {
		opts.OutputAttribute = def.OutputAttribute
	}
	if opts.InputConstructors == nil {
		opts.InputConstructors = def.InputConstructors
	}
	if opts.OutputConstructors == nil {
		opts.OutputConstructors = def.OutputConstructors
	}
	if opts.Merge == "" {
		opts.Merge = def.Merge
	}
	if opts.Cycles == "" {
		opts.Cycles = def.Cycles
	}

	r := opts.Resolver
	if r == nil {
		r = resolver.New(resolver.Options{})
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Extractor{
		loader:      loader,
		opts:        opts,
		resolver:    r,
		log:         log,
		inputCtors:  toSet(opts.InputConstructors),
		outputCtors: toSet(opts.OutputConstructors),
	}
}

// ExtractFile loads the unit at path and extracts its primary declaration:
// a component if one exists, otherwise a module. It fails with
// ErrNoDeclaration, and no partial output, when neither is present.
func (e *Extractor) ExtractFile(path string) (schema.Definition, error) {
	unit, err := e.loader.LoadUnit(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return e.ExtractUnit(unit)
}

// ExtractUnit extracts the primary declaration of an already loaded unit.
func (e *Extractor) ExtractUnit(unit project.Unit) (schema.Definition, error) {
	if decl := e.findDeclaration(unit, e.opts.ComponentAttribute); decl != nil {
		e.log.Info("component class found",
			zap.String("name", decl.Name()),
			zap.String("unit", unit.Path()))
		def := e.ExtractComponent(decl)
		return &def, nil
	}

	if decl := e.findDeclaration(unit, e.opts.ModuleAttribute); decl != nil {
		e.log.Info("module class found",
			zap.String("name", decl.Name()),
			zap.String("unit", unit.Path()))
		def := e.WalkModule(decl)
		return &def, nil
	}

	return nil, fmt.Errorf("%s: %w", unit.Path(), ErrNoDeclaration)
}

// findDeclaration returns the first declaration of unit carrying attribute.
func (e *Extractor) findDeclaration(unit project.Unit, attribute string) project.Declaration {
	for _, decl := range unit.Declarations() {
		if _, ok := decl.Metadata(attribute); ok {
			return decl
		}
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
