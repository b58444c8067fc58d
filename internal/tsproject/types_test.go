package tsproject

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/ngscan/internal/extractor"
	"github.com/sincro/ngscan/internal/project"
	"github.com/sincro/ngscan/internal/resolver"
	"github.com/sincro/ngscan/internal/schema"
)

// resolveField resolves the type of a field of the class Host declared in
// main.ts.
func resolveField(t *testing.T, files map[string]string, field string) *schema.Schema {
	t.Helper()
	p := newProject(t, writeTree(t, files), Options{})
	host := classNamed(t, loadUnit(t, p, "main.ts"), "Host")
	member := memberNamed(t, host.Members(), field)
	return resolver.New(resolver.Options{}).Resolve(member.Type)
}

func TestTypes_Primitives(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `export class Host {
  all: { a: string; b: number; c: boolean; d: 'x' | 'y'; e: readonly number[]; f: Array<string>; g: any };
}
`}, "all")

	want := schema.Object(schema.Properties{
		{Name: "a", Schema: schema.String()},
		{Name: "b", Schema: schema.Number()},
		{Name: "c", Schema: schema.Boolean()},
		{Name: "d", Schema: schema.Union(schema.String(), schema.String())},
		{Name: "e", Schema: schema.Array(schema.Number())},
		{Name: "f", Schema: schema.Array(schema.String())},
		{Name: "g", Schema: schema.Unknown()},
	}, []string{"a", "b", "c", "d", "e", "f", "g"})
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_InferredInitializers(t *testing.T) {
	files := map[string]string{"main.ts": `export class Host {
  h = 'text';
  i = -1;
  j = !0;
  k = [true, false];
  l = { label: 'a', size: 2 };
  m = someCall();
}
`}
	cases := map[string]*schema.Schema{
		"h": schema.String(),
		"i": schema.Number(),
		"j": schema.Boolean(),
		"k": schema.Array(schema.Boolean()),
		"l": schema.Object(schema.Properties{
			{Name: "label", Schema: schema.String()},
			{Name: "size", Schema: schema.Number()},
		}, []string{"label", "size"}),
		"m": schema.Unknown(),
	}
	for field, want := range cases {
		t.Run(field, func(t *testing.T) {
			got := resolveField(t, files, field)
			assert.True(t, schema.Equal(want, got), "got %+v", got)
		})
	}
}

func TestTypes_ImportedInterface(t *testing.T) {
	s := resolveField(t, map[string]string{
		"main.ts": `import { Person } from './models/person';
export class Host { person: Person; }
`,
		"models/person.ts": `import { Address } from './address';
export interface Person {
  name: string;
  age?: number;
  address: Address;
  tags: string[];
}
`,
		"models/address.ts": `export interface Address { city: string; zip?: string }
`,
	}, "person")

	want := schema.Object(schema.Properties{
		{Name: "name", Schema: schema.String()},
		{Name: "age", Schema: schema.Number()},
		{Name: "address", Schema: schema.Object(schema.Properties{
			{Name: "city", Schema: schema.String()},
			{Name: "zip", Schema: schema.String()},
		}, []string{"city"})},
		{Name: "tags", Schema: schema.Array(schema.String())},
	}, []string{"name", "address", "tags"})
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_BarrelReexports(t *testing.T) {
	s := resolveField(t, map[string]string{
		"main.ts": `import { Item as Entry } from './shared';
export class Host { entry: Entry; }
`,
		"shared/index.ts": `export * from './a';
export { Model as Item } from './b';
`,
		"shared/a.ts": "export interface Other { x: number }\n",
		"shared/b.ts": `interface Model { id: number }
export { Model };
`,
	}, "entry")

	want := schema.Object(schema.Properties{{Name: "id", Schema: schema.Number()}}, []string{"id"})
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_CyclicReexportsTerminate(t *testing.T) {
	s := resolveField(t, map[string]string{
		"main.ts": `import { Ghost } from './a';
export class Host { ghost: Ghost; }
`,
		"a.ts": "export * from './b';\n",
		"b.ts": "export * from './a';\n",
	}, "ghost")

	assert.Equal(t, schema.KindUnknown, s.Kind)
}

func TestTypes_SelfReferenceIsCircular(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `interface TreeNode {
  label: string;
  children: TreeNode[];
  parent?: TreeNode;
}
export class Host { root: TreeNode; }
`}, "root")

	want := schema.Object(schema.Properties{
		{Name: "label", Schema: schema.String()},
		{Name: "children", Schema: schema.Array(schema.Circular())},
		{Name: "parent", Schema: schema.Circular()},
	}, []string{"label", "children"})
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_RecursiveAlias(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `type Json = string | number | Json[];
export class Host { value: Json; }
`}, "value")

	want := schema.Union(schema.String(), schema.Number(), schema.Array(schema.Circular()))
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_MutuallyRecursiveAliases(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `type A = B[];
type B = A | string;
export class Host { value: A; }
`}, "value")

	want := schema.Array(schema.Union(schema.Circular(), schema.String()))
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_TransparentAlias(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `type Id = string;
type Ids = Id[];
export class Host { ids: Ids; }
`}, "ids")

	assert.True(t, schema.Equal(schema.Array(schema.String()), s), "got %+v", s)
}

func TestTypes_Generics(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `interface Page<T, M = number> {
  items: T[];
  first?: T;
  meta: M;
}
export class Host { page: Page<string>; }
`}, "page")

	want := schema.Object(schema.Properties{
		{Name: "items", Schema: schema.Array(schema.String())},
		{Name: "first", Schema: schema.String()},
		{Name: "meta", Schema: schema.Number()},
	}, []string{"items", "meta"})
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_UnboundedGenericTerminates(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `interface Grow<T> { value: T; next: Grow<T[]> }
export class Host { grow: Grow<string>; }
`}, "grow")

	require.Equal(t, schema.KindObject, s.Kind)
	depth := 0
	for cur := s; cur.Kind == schema.KindObject; depth++ {
		next, ok := cur.Properties.Get("next")
		require.True(t, ok)
		cur = next
	}
	assert.Equal(t, maxInstantiationDepth, depth)
}

func TestTypes_Enums(t *testing.T) {
	files := map[string]string{"main.ts": `enum Color { Red, Green = 4 }
enum Status { Active = 'active', Closed = 'closed' }
export class Host {
  color: Color;
  status: Status;
}
`}
	assert.Equal(t, schema.KindNumber, resolveField(t, files, "color").Kind)
	assert.Equal(t, schema.KindString, resolveField(t, files, "status").Kind)
}

func TestTypes_IntersectionAndClassMembers(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `class Base {
  static registry = {};
  id = 0;
  name?: string;
  describe(): string { return ''; }
}
type Named = Base & { alias: string };
export class Host { value: Named; }
`}, "value")

	want := schema.Object(schema.Properties{
		{Name: "id", Schema: schema.Number()},
		{Name: "name", Schema: schema.String()},
		{Name: "alias", Schema: schema.String()},
	}, []string{"id", "alias"})
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_RepeatedPrimitivesAreNotCircular(t *testing.T) {
	s := resolveField(t, map[string]string{"main.ts": `interface Pair<T> { left: T; right: T }
export class Host { pair: Pair<string[]>; }
`}, "pair")

	want := schema.Object(schema.Properties{
		{Name: "left", Schema: schema.Array(schema.String())},
		{Name: "right", Schema: schema.Array(schema.String())},
	}, []string{"left", "right"})
	assert.True(t, schema.Equal(want, s), "got %+v", s)
}

func TestTypes_DeclaredIdentityIsStable(t *testing.T) {
	p := newProject(t, writeTree(t, map[string]string{"main.ts": `interface Box<T> { value: T }
export class Host {
  a: Box<string>;
  b: Box<string>;
  c: Box<number>;
  d: string;
  e: string;
}
`}), Options{})
	members := classNamed(t, loadUnit(t, p, "main.ts"), "Host").Members()
	id := func(name string) project.TypeID { return memberNamed(t, members, name).Type.ID() }

	assert.Equal(t, id("a"), id("b"))
	assert.NotEqual(t, id("a"), id("c"))
	assert.NotEqual(t, id("d"), id("e"))
}

const extractionFixture = `import { Component, EventEmitter, Input, NgModule, Output, input, model, output, signal } from '@angular/core';
import { Person } from '@models/person';
import { Status } from './status';

@Component({
  selector: 'app-profile',
  standalone: false,
})
export class ProfileComponent {
  @Input() person!: Person;
  @Input() set status(value: Status) {}
  @Output() saved = new EventEmitter<Person>();
  compact = input(false);
  label = input.required<string>();
  value = model<number>();
  closed = output<void>();
  private counter = signal(0);
}
`

func TestExtractor_EndToEnd(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"baseUrl": "src", "paths": {"@models/*": ["app/models/*"]}}}`,
		"src/app/app.module.ts": `import { NgModule } from '@angular/core';
import { BrowserModule } from '@angular/platform-browser';
import { ProfileModule } from './profile/profile.module';
import { HeaderComponent } from './header.component';
import { Missing } from './missing';

@NgModule({
  declarations: [HeaderComponent],
  imports: [BrowserModule, ProfileModule],
  providers: [],
  bootstrap: [HeaderComponent],
})
export class AppModule {}
`,
		"src/app/header.component.ts": `import { Component } from '@angular/core';
@Component({ selector: "app-header", standalone: true })
export class HeaderComponent {}
`,
		"src/app/profile/profile.module.ts": `import { NgModule } from '@angular/core';
import { ProfileComponent } from './profile.component';
import { AppModule } from '../app.module';

@NgModule({ declarations: [ProfileComponent], exports: [ProfileComponent] })
export class ProfileModule {}
`,
		"src/app/profile/profile.component.ts": extractionFixture,
		"src/app/profile/status.ts":            "export enum Status { On = 'on', Off = 'off' }\n",
		"src/app/models/person.ts":             "export interface Person { name: string; nickname?: string }\n",
	})
	p := newProject(t, root, Options{})
	ext := extractor.New(p, extractor.Options{})

	def, err := ext.ExtractFile(filepath.Join(root, "src", "app", "app.module.ts"))
	require.NoError(t, err)
	mod, ok := def.(*schema.ModuleDefinition)
	require.True(t, ok)

	assert.Equal(t, "AppModule", mod.Name)
	assert.Equal(t, []string{"HeaderComponent"}, mod.Declarations)
	assert.Equal(t, []string{"BrowserModule", "ProfileModule"}, mod.Imports)
	assert.Equal(t, []string{}, mod.Exports)
	assert.Equal(t, []string{}, mod.Providers)

	require.Len(t, mod.DeclaredComponents, 2)
	assert.Equal(t, "ProfileComponent", mod.DeclaredComponents[0].Name)
	assert.Equal(t, "HeaderComponent", mod.DeclaredComponents[1].Name)
	assert.Equal(t, "app-header", mod.DeclaredComponents[1].Selector)
	assert.True(t, mod.DeclaredComponents[1].Standalone)

	profile := mod.DeclaredComponents[0]
	assert.Equal(t, "app-profile", profile.Selector)
	assert.False(t, profile.Standalone)

	names := func(list []schema.ComponentIO) []string {
		out := make([]string, len(list))
		for i, io := range list {
			out[i] = io.Name
		}
		return out
	}
	assert.Equal(t, []string{"person", "status", "compact", "label", "value", "counter"}, names(profile.Inputs))
	assert.Equal(t, []string{"saved", "closed"}, names(profile.Outputs))

	person := schema.Object(schema.Properties{
		{Name: "name", Schema: schema.String()},
		{Name: "nickname", Schema: schema.String()},
	}, []string{"name"})

	inputs := map[string]*schema.Schema{
		"person":  person,
		"status":  schema.String(),
		"compact": schema.Boolean(),
		"label":   schema.String(),
		"value":   schema.Number(),
		"counter": schema.Number(),
	}
	for name, want := range inputs {
		got, ok := profile.Input(name)
		require.True(t, ok, name)
		assert.True(t, schema.Equal(want, got.Type), "%s: got %+v", name, got.Type)
	}

	saved, _ := profile.Output("saved")
	assert.True(t, schema.Equal(person, saved.Type), "saved: got %+v", saved.Type)
	closed, _ := profile.Output("closed")
	assert.Equal(t, schema.KindUnknown, closed.Type.Kind)
}
