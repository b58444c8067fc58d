package cache

import (
	"sort"
	"sync"
)

// unitNode is one source unit and its import edges.
type unitNode struct {
	path      string
	imports   []string // units this unit imports
	importers []string // units importing this unit
}

// ImportGraph tracks import edges between source units.
type ImportGraph struct {
	nodes map[string]*unitNode
	mu    sync.RWMutex
}

// NewImportGraph creates an empty graph.
func NewImportGraph() *ImportGraph {
	return &ImportGraph{
		nodes: make(map[string]*unitNode),
	}
}

// AddImport records that from imports to.
func (g *ImportGraph) AddImport(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src := g.node(from)
	dst := g.node(to)
	if !contains(src.imports, to) {
		src.imports = append(src.imports, to)
	}
	if !contains(dst.importers, from) {
		dst.importers = append(dst.importers, from)
	}
}

// SetImports replaces the outgoing edges of from, as after a re-parse.
func (g *ImportGraph) SetImports(from string, to []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src := g.node(from)
	for _, old := range src.imports {
		if n, ok := g.nodes[old]; ok {
			n.importers = removeString(n.importers, from)
		}
	}
	src.imports = make([]string, 0, len(to))
	for _, t := range to {
		if contains(src.imports, t) {
			continue
		}
		src.imports = append(src.imports, t)
		dst := g.node(t)
		if !contains(dst.importers, from) {
			dst.importers = append(dst.importers, from)
		}
	}
}

// TransitiveImporters returns every unit that reaches path through imports,
// sorted. path itself is included only when it sits on a cycle.
func (g *ImportGraph) TransitiveImporters(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[string]bool)
	result := make([]string, 0)

	var visit func(string)
	visit = func(p string) {
		n, ok := g.nodes[p]
		if !ok {
			return
		}
		for _, importer := range n.importers {
			if visited[importer] {
				continue
			}
			visited[importer] = true
			result = append(result, importer)
			visit(importer)
		}
	}

	visit(path)
	sort.Strings(result)
	return result
}

// HasCycle reports whether path can reach itself through imports.
func (g *ImportGraph) HasCycle(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[string]bool)
	var reaches func(string) bool
	reaches = func(p string) bool {
		n, ok := g.nodes[p]
		if !ok {
			return false
		}
		for _, next := range n.imports {
			if next == path {
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if reaches(next) {
				return true
			}
		}
		return false
	}
	return reaches(path)
}

// Remove drops path and every edge touching it.
func (g *ImportGraph) Remove(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[path]
	if !ok {
		return
	}
	for _, importer := range n.importers {
		if other, ok := g.nodes[importer]; ok {
			other.imports = removeString(other.imports, path)
		}
	}
	for _, imported := range n.imports {
		if other, ok := g.nodes[imported]; ok {
			other.importers = removeString(other.importers, path)
		}
	}
	delete(g.nodes, path)
}

// node returns the node for path, creating it. Callers hold the write lock.
func (g *ImportGraph) node(path string) *unitNode {
	n, ok := g.nodes[path]
	if !ok {
		n = &unitNode{
			path:      path,
			imports:   make([]string, 0),
			importers: make([]string, 0),
		}
		g.nodes[path] = n
	}
	return n
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func removeString(slice []string, item string) []string {
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != item {
			result = append(result, s)
		}
	}
	return result
}
