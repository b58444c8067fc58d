// Package tsproject implements the project type oracle and unit loader on top
// of a tree-sitter TypeScript grammar.
//
// Units are parsed lazily on first load and cached by path together with the
// hash of their contents. Types are built on demand from the syntax tree:
// nothing is inferred beyond what the source states, except for a handful of
// initializer shapes (literals, new expressions and the Angular signal
// constructors).
package tsproject

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"go.uber.org/zap"

	"github.com/sincro/ngscan/internal/cache"
	"github.com/sincro/ngscan/internal/project"
)

// Options configures a Project.
type Options struct {
	// BaseURL is the directory path aliases are relative to, itself
	// relative to the root. Empty means the root, or the tsconfig baseUrl.
	BaseURL string
	// Paths are module path aliases in tsconfig form. When nil they are
	// read from TSConfig.
	Paths map[string][]string
	// TSConfig is the tsconfig file consulted for baseUrl and paths,
	// relative to the root. Defaults to tsconfig.json; missing is fine.
	TSConfig string

	Logger *zap.Logger
}

// Project loads TypeScript units from a directory tree.
type Project struct {
	root        string
	baseURL     string
	bareBaseURL bool
	aliases     []pathAlias
	log         *zap.Logger

	hasher *cache.FileHasher
	units  *cache.UnitCache[*sourceFile]
	graph  *cache.ImportGraph

	mu  sync.Mutex
	ids atomic.Uint64
}

// New creates a project rooted at root.
func New(root string, opts Options) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", absRoot)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	p := &Project{
		root:   absRoot,
		log:    log,
		hasher: cache.NewFileHasher(),
		units:  cache.NewUnitCache[*sourceFile](),
		graph:  cache.NewImportGraph(),
	}

	baseURL := opts.BaseURL
	paths := opts.Paths
	if paths == nil {
		tsconfigPath := opts.TSConfig
		if tsconfigPath == "" {
			tsconfigPath = "tsconfig.json"
		}
		if !filepath.IsAbs(tsconfigPath) {
			tsconfigPath = filepath.Join(absRoot, tsconfigPath)
		}
		cfg, err := readTSConfig(tsconfigPath)
		switch {
		case err == nil:
			paths = cfg.CompilerOptions.Paths
			if baseURL == "" && cfg.CompilerOptions.BaseURL != "" {
				baseURL = cfg.CompilerOptions.BaseURL
				p.bareBaseURL = true
			}
			log.Debug("loaded tsconfig",
				zap.String("path", tsconfigPath),
				zap.Int("aliases", len(paths)))
		case errors.Is(err, fs.ErrNotExist):
		default:
			log.Warn("ignoring unreadable tsconfig", zap.String("path", tsconfigPath), zap.Error(err))
		}
	}

	if baseURL == "" {
		baseURL = "."
	}
	if !filepath.IsAbs(baseURL) {
		baseURL = filepath.Join(absRoot, baseURL)
	}
	p.baseURL = baseURL
	p.aliases = compileAliases(paths)

	return p, nil
}

// Root returns the absolute project root.
func (p *Project) Root() string {
	return p.root
}

// LoadUnit parses (or returns the cached parse of) the file at path. Relative
// paths are taken relative to the working directory.
func (p *Project) LoadUnit(path string) (project.Unit, error) {
	f, err := p.file(path)
	if err != nil {
		return nil, err
	}
	return p.newUnit(f), nil
}

// file returns the parsed file at path, parsing it when not cached.
func (p *Project) file(path string) (*sourceFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.units.Get(abs); ok {
		return entry.Value, nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", abs, project.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", abs, err)
	}

	f, err := p.parse(abs, content)
	if err != nil {
		return nil, err
	}

	resolved := make([]string, 0, len(f.imports)+len(f.reexports))
	for i := range f.imports {
		f.imports[i].resolved = p.resolveSpecifier(abs, f.imports[i].specifier)
		if f.imports[i].resolved != "" {
			resolved = append(resolved, f.imports[i].resolved)
		}
	}
	for i := range f.reexports {
		f.reexports[i].resolved = p.resolveSpecifier(abs, f.reexports[i].specifier)
		if f.reexports[i].resolved != "" {
			resolved = append(resolved, f.reexports[i].resolved)
		}
	}

	p.units.Set(abs, f, f.hash)
	p.graph.SetImports(abs, resolved)

	p.log.Debug("parsed unit",
		zap.String("path", abs),
		zap.Int("classes", len(f.classes)),
		zap.Int("imports", len(f.imports)))

	return f, nil
}

func (p *Project) parse(path string, content []byte) (*sourceFile, error) {
	parser := sitter.NewParser()
	if strings.HasSuffix(path, ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if tree.RootNode().HasError() {
		p.log.Warn("source contains syntax errors", zap.String("path", path))
	}

	return newSourceFile(path, p.hasher.HashContent(content), content, tree), nil
}

// Refresh re-hashes the file at path and invalidates it, with every unit
// importing it, when its contents changed or it was removed. Units holding an
// unresolved import that now resolves to path are invalidated too, so a file
// created after its importer was parsed is picked up. It returns the
// invalidated paths, nil when the cached parse is still current.
func (p *Project) Refresh(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	hash, err := p.hasher.HashFile(abs)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to hash %s: %w", abs, err)
	}
	if err != nil {
		return p.Invalidate(abs), nil
	}
	if _, ok := p.units.Lookup(abs, hash); ok {
		return nil, nil
	}
	return p.Invalidate(append([]string{abs}, p.awaiting(abs)...)...), nil
}

// awaiting returns the cached units with an unresolved import or re-export
// that resolves to path.
func (p *Project) awaiting(path string) []string {
	var units []string
	for _, f := range p.units.Values() {
		if f.awaits(path, p.resolveSpecifier) {
			units = append(units, f.path)
		}
	}
	return units
}

// Prune drops every unit not loaded within maxAge and returns the dropped
// paths. Edges pointing at a dropped unit are kept so that a later change to
// it still reaches its importers.
func (p *Project) Prune(maxAge time.Duration) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	pruned := p.units.Prune(maxAge)
	for _, path := range pruned {
		p.graph.SetImports(path, nil)
	}
	if len(pruned) > 0 {
		p.log.Debug("pruned stale units", zap.Strings("paths", pruned))
	}
	return pruned
}

// Invalidate drops the given units and every unit that transitively imports
// them from the cache, returning the dropped paths.
func (p *Project) Invalidate(paths ...string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]bool)
	var dropped []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		for _, affected := range append([]string{abs}, p.graph.TransitiveImporters(abs)...) {
			if seen[affected] {
				continue
			}
			seen[affected] = true
			if _, ok := p.units.Get(affected); ok {
				dropped = append(dropped, affected)
			}
		}
	}

	p.units.Invalidate(dropped...)
	for _, path := range dropped {
		p.graph.Remove(path)
	}

	if len(dropped) > 0 {
		p.log.Debug("invalidated units", zap.Strings("paths", dropped))
	}
	return dropped
}

// Cached returns the number of parsed units currently cached.
func (p *Project) Cached() int {
	return p.units.Size()
}

// Close releases every parsed tree. Types handed out earlier must not be
// used afterwards.
func (p *Project) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.units.Values() {
		f.tree.Close()
	}
	p.units.InvalidateAll()
}

func (p *Project) freshID() project.TypeID {
	return project.TypeID(fmt.Sprintf("t%d", p.ids.Add(1)))
}
