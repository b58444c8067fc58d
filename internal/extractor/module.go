package extractor

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sincro/ngscan/internal/cache"
	"github.com/sincro/ngscan/internal/project"
	"github.com/sincro/ngscan/internal/schema"
)

// WalkModule builds the definition of a module declaration. The four literal
// configuration lists are recorded as written; DeclaredComponents collects
// every component reachable through the import graph of the module's unit.
//
// Imports that fail to resolve or load, and units holding neither a component
// nor a module, are skipped with a warning.
func (e *Extractor) WalkModule(decl project.Declaration) schema.ModuleDefinition {
	block, _ := decl.Metadata(e.opts.ModuleAttribute)

	w := &moduleWalk{
		extractor: e,
		visited:   make(map[string]bool),
		edges:     cache.NewImportGraph(),
	}
	components := []schema.ComponentDefinition{}
	w.collect(decl, &components)

	return schema.ModuleDefinition{
		Kind:               schema.KindModule,
		Name:               decl.Name(),
		Declarations:       literalList(block, "declarations"),
		Imports:            literalList(block, "imports"),
		Exports:            literalList(block, "exports"),
		Providers:          literalList(block, "providers"),
		DeclaredComponents: components,
		SourceFilePath:     decl.UnitPath(),
	}
}

// moduleWalk holds the state of one WalkModule call tree.
type moduleWalk struct {
	extractor *Extractor
	visited   map[string]bool
	// edges records the imports followed so far, to tell a cycle from a
	// unit shared by two importers.
	edges *cache.ImportGraph
}

func (w *moduleWalk) guarded() bool {
	return w.extractor.opts.Cycles != CycleUnguarded
}

// collect appends to components every component reachable from the imports
// of the unit declaring decl, recursing into imported modules.
func (w *moduleWalk) collect(decl project.Declaration, components *[]schema.ComponentDefinition) {
	e := w.extractor
	unitPath := decl.UnitPath()
	if w.guarded() {
		w.visited[unitPath] = true
	}

	unit, err := e.loader.LoadUnit(unitPath)
	if err != nil {
		e.log.Warn("failed to load module unit",
			zap.String("module", decl.Name()),
			zap.String("unit", unitPath),
			zap.Error(err))
		return
	}

	for _, imp := range unit.Imports() {
		if !imp.Resolved() {
			w.logUnresolved(unitPath, imp)
			continue
		}

		target := imp.ResolvedPath
		w.edges.AddImport(unitPath, target)
		if w.guarded() && w.visited[target] {
			if w.edges.HasCycle(target) {
				e.log.Warn("import cycle, unit not entered again",
					zap.String("unit", target),
					zap.String("importer", unitPath))
				continue
			}
			e.log.Debug("unit already visited",
				zap.String("unit", target),
				zap.String("importer", unitPath))
			continue
		}
		if w.guarded() {
			w.visited[target] = true
		}

		imported, err := e.loader.LoadUnit(target)
		if err != nil {
			e.log.Warn("failed to load imported unit",
				zap.String("specifier", imp.ModuleSpecifier),
				zap.String("unit", target),
				zap.Error(err))
			continue
		}

		if c := e.findDeclaration(imported, e.opts.ComponentAttribute); c != nil {
			e.log.Debug("collecting component",
				zap.String("component", c.Name()),
				zap.String("unit", target))
			*components = append(*components, e.ExtractComponent(c))
			continue
		}

		if m := e.findDeclaration(imported, e.opts.ModuleAttribute); m != nil {
			e.log.Debug("entering imported module",
				zap.String("module", m.Name()),
				zap.String("unit", target))
			w.collect(m, components)
			continue
		}

		e.log.Warn("imported unit has no component or module declaration",
			zap.String("specifier", imp.ModuleSpecifier),
			zap.String("unit", target))
	}
}

// logUnresolved reports an import the loader could not map to a unit. Bare
// package specifiers point outside the project and are expected.
func (w *moduleWalk) logUnresolved(unitPath string, imp project.Import) {
	fields := []zap.Field{
		zap.String("specifier", imp.ModuleSpecifier),
		zap.String("importer", unitPath),
	}
	if isRelative(imp.ModuleSpecifier) {
		w.extractor.log.Warn("import could not be resolved", fields...)
		return
	}
	w.extractor.log.Debug("skipping package import", fields...)
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// literalList reads an array-valued metadata property with quoting stripped.
// A missing or non-array property yields an empty list.
func literalList(block *project.MetadataBlock, name string) []string {
	prop, ok := block.Lookup(name)
	if !ok || !prop.IsArray {
		return []string{}
	}
	list := make([]string, 0, len(prop.Elements))
	for _, el := range prop.Elements {
		el = strings.TrimSpace(project.StripQuotes(el))
		if el == "" {
			continue
		}
		list = append(list, el)
	}
	return list
}
