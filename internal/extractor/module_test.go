package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sincro/ngscan/internal/project"
	pt "github.com/sincro/ngscan/internal/project/projecttest"
	"github.com/sincro/ngscan/internal/schema"
)

func unit(path string, decls []project.Declaration, imports ...project.Import) *pt.Unit {
	return &pt.Unit{UnitPath: path, Decls: decls, Imps: imports}
}

func decls(d ...project.Declaration) []project.Declaration { return d }

func componentNames(def schema.ModuleDefinition) []string {
	names := make([]string, 0, len(def.DeclaredComponents))
	for _, c := range def.DeclaredComponents {
		names = append(names, c.Name)
	}
	return names
}

func observedExtractor(loader project.Loader, opts Options) (*Extractor, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts.Logger = zap.New(core)
	return New(loader, opts), logs
}

func TestWalkModule_Transitive(t *testing.T) {
	c := pt.Component("c.ts", "C", []project.MetadataProperty{pt.Text("selector", `"app-c"`)},
		field("title", pt.String(), "Input"))
	b := pt.Module("b.ts", "B", pt.List("declarations", "C"), pt.List("exports", "C"))
	a := pt.Module("a.ts", "A",
		pt.List("declarations", "AppComponent"),
		pt.List("imports", "BrowserModule", "B"),
		pt.List("providers", "'API_URL'"),
	)

	loader := pt.NewLoader(
		unit("a.ts", decls(a), pt.Import("./b", "b.ts")),
		unit("b.ts", decls(b), pt.Import("./c", "c.ts")),
		unit("c.ts", decls(c)),
	)

	def := New(loader, Options{}).WalkModule(a)

	assert.Equal(t, schema.KindModule, def.Kind)
	assert.Equal(t, "A", def.Name)
	assert.Equal(t, []string{"AppComponent"}, def.Declarations)
	assert.Equal(t, []string{"BrowserModule", "B"}, def.Imports)
	assert.Equal(t, []string{}, def.Exports)
	assert.Equal(t, []string{"API_URL"}, def.Providers)
	assert.Equal(t, "a.ts", def.SourceFilePath)

	require.Equal(t, []string{"C"}, componentNames(def))
	got := def.DeclaredComponents[0]
	assert.Equal(t, "app-c", got.Selector)
	assert.Equal(t, []string{"title"}, ioNames(got.Inputs))
}

func TestWalkModule_ImportOrderAndSharedAccumulator(t *testing.T) {
	a := pt.Module("a.ts", "A")
	loader := pt.NewLoader(
		unit("a.ts", decls(a),
			pt.Import("./x", "x.ts"),
			pt.Import("./m", "m.ts"),
			pt.Import("./z", "z.ts"),
		),
		unit("x.ts", decls(pt.Component("x.ts", "X", nil))),
		unit("m.ts", decls(pt.Module("m.ts", "M")), pt.Import("./y", "y.ts")),
		unit("y.ts", decls(pt.Component("y.ts", "Y", nil))),
		unit("z.ts", decls(pt.Component("z.ts", "Z", nil))),
	)

	def := New(loader, Options{}).WalkModule(a)
	assert.Equal(t, []string{"X", "Y", "Z"}, componentNames(def))
}

func TestWalkModule_ComponentWinsOverModule(t *testing.T) {
	a := pt.Module("a.ts", "A")
	loader := pt.NewLoader(
		unit("a.ts", decls(a), pt.Import("./both", "both.ts")),
		unit("both.ts",
			decls(pt.Module("both.ts", "Inner"), pt.Component("both.ts", "Widget", nil)),
			pt.Import("./never", "never.ts")),
		unit("never.ts", decls(pt.Component("never.ts", "Never", nil))),
	)

	def := New(loader, Options{}).WalkModule(a)
	assert.Equal(t, []string{"Widget"}, componentNames(def))
}

func TestWalkModule_UnresolvedImportIsNonFatal(t *testing.T) {
	a := pt.Module("a.ts", "A", pt.List("declarations", "Local"), pt.List("imports", "Missing"))
	loader := pt.NewLoader(
		unit("a.ts", decls(a),
			pt.Import("./missing", ""),
			pt.Import("./gone", "gone.ts"),
			pt.Import("./c", "c.ts"),
		),
		unit("c.ts", decls(pt.Component("c.ts", "C", nil))),
	)

	ext, logs := observedExtractor(loader, Options{})
	def := ext.WalkModule(a)

	assert.Equal(t, []string{"Local"}, def.Declarations)
	assert.Equal(t, []string{"Missing"}, def.Imports)
	assert.Equal(t, []string{"C"}, componentNames(def))

	warnings := logs.FilterLevelExact(zapcore.WarnLevel)
	assert.Equal(t, 1, warnings.FilterMessage("import could not be resolved").Len())
	assert.Equal(t, 1, warnings.FilterMessage("failed to load imported unit").Len())
}

func TestWalkModule_PackageImportsLoggedAtDebug(t *testing.T) {
	a := pt.Module("a.ts", "A")
	loader := pt.NewLoader(unit("a.ts", decls(a), pt.Import("@angular/core", "")))

	ext, logs := observedExtractor(loader, Options{})
	def := ext.WalkModule(a)

	assert.Empty(t, def.DeclaredComponents)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping package import").Len())
}

func TestWalkModule_UnitWithoutDeclarationWarns(t *testing.T) {
	a := pt.Module("a.ts", "A")
	loader := pt.NewLoader(
		unit("a.ts", decls(a), pt.Import("./models", "models.ts")),
		unit("models.ts", nil),
	)

	ext, logs := observedExtractor(loader, Options{})
	def := ext.WalkModule(a)

	assert.Empty(t, def.DeclaredComponents)
	assert.Equal(t, 1, logs.FilterMessage("imported unit has no component or module declaration").Len())
}

func TestWalkModule_CycleGuard(t *testing.T) {
	a := pt.Module("a.ts", "A")
	b := pt.Module("b.ts", "B")
	loader := pt.NewLoader(
		unit("a.ts", decls(a), pt.Import("./b", "b.ts")),
		unit("b.ts", decls(b), pt.Import("./a", "a.ts"), pt.Import("./c", "c.ts")),
		unit("c.ts", decls(pt.Component("c.ts", "C", nil))),
	)

	ext, logs := observedExtractor(loader, Options{})
	def := ext.WalkModule(a)

	assert.Equal(t, []string{"C"}, componentNames(def))
	assert.Equal(t, 1, loader.Loads["a.ts"], "the root unit is not re-entered through b.ts")

	cycles := logs.FilterMessage("import cycle, unit not entered again").All()
	require.Len(t, cycles, 1)
	assert.Equal(t, zapcore.WarnLevel, cycles[0].Level)
	assert.Equal(t, "a.ts", cycles[0].ContextMap()["unit"])
	assert.Equal(t, "b.ts", cycles[0].ContextMap()["importer"])
}

func TestWalkModule_DiamondGuardedAndUnguarded(t *testing.T) {
	build := func() (*pt.Declaration, *pt.Loader) {
		a := pt.Module("a.ts", "A")
		return a, pt.NewLoader(
			unit("a.ts", decls(a), pt.Import("./m1", "m1.ts"), pt.Import("./m2", "m2.ts")),
			unit("m1.ts", decls(pt.Module("m1.ts", "M1")), pt.Import("./x", "x.ts")),
			unit("m2.ts", decls(pt.Module("m2.ts", "M2")), pt.Import("./x", "x.ts")),
			unit("x.ts", decls(pt.Component("x.ts", "X", nil))),
		)
	}

	a, loader := build()
	ext, logs := observedExtractor(loader, Options{})
	guarded := ext.WalkModule(a)
	assert.Equal(t, []string{"X"}, componentNames(guarded))
	assert.Zero(t, logs.FilterMessage("import cycle, unit not entered again").Len(), "a shared unit is not a cycle")
	assert.Equal(t, 1, logs.FilterMessage("unit already visited").Len())

	a, loader = build()
	unguarded := New(loader, Options{Cycles: CycleUnguarded}).WalkModule(a)
	assert.Equal(t, []string{"X", "X"}, componentNames(unguarded))
}

func TestWalkModule_NonArrayListsAreEmpty(t *testing.T) {
	a := pt.Module("a.ts", "A", pt.Text("declarations", "COMPONENTS"))
	def := New(pt.NewLoader(unit("a.ts", decls(a))), Options{}).WalkModule(a)

	assert.Equal(t, []string{}, def.Declarations)
	assert.Equal(t, []string{}, def.Imports)
	assert.Equal(t, []schema.ComponentDefinition{}, def.DeclaredComponents)
}

func TestExtractFile_ClassifiesDeclaration(t *testing.T) {
	comp := pt.Component("c.ts", "C", nil)
	mod := pt.Module("m.ts", "M")
	loader := pt.NewLoader(
		unit("c.ts", decls(comp)),
		unit("m.ts", decls(mod), pt.Import("./c", "c.ts")),
	)
	ext := New(loader, Options{})

	def, err := ext.ExtractFile("c.ts")
	require.NoError(t, err)
	cd, ok := def.(*schema.ComponentDefinition)
	require.True(t, ok)
	assert.Equal(t, "C", cd.Name)

	def, err = ext.ExtractFile("m.ts")
	require.NoError(t, err)
	md, ok := def.(*schema.ModuleDefinition)
	require.True(t, ok)
	assert.Equal(t, []string{"C"}, componentNames(*md))
}

func TestExtractFile_MissingDeclaration(t *testing.T) {
	loader := pt.NewLoader(unit("service.ts", decls(&pt.Declaration{DeclName: "ApiService", Path: "service.ts"})))

	def, err := New(loader, Options{}).ExtractFile("service.ts")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDeclaration))
	assert.Nil(t, def)
}

func TestExtractFile_LoadFailure(t *testing.T) {
	def, err := New(pt.NewLoader(), Options{}).ExtractFile("nope.ts")

	require.Error(t, err)
	assert.True(t, errors.Is(err, project.ErrNotFound))
	assert.False(t, errors.Is(err, ErrNoDeclaration))
	assert.Nil(t, def)
}
