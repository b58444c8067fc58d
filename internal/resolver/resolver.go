// Package resolver reduces host type handles to finite ValidationSchema trees.
package resolver

import (
	"github.com/sincro/ngscan/internal/project"
	"github.com/sincro/ngscan/internal/schema"
)

// DefaultWrappers are the single-argument reactive and event wrappers that
// resolve to their payload type.
var DefaultWrappers = []string{
	"Signal",
	"EventEmitter",
	"InputSignal",
	"WritableSignal",
	"ModelSignal",
	"OutputEmitterRef",
}

// Seen maps type identities to the schema recorded for them during one
// top-level resolution. A fresh Seen must be used per entry point.
type Seen map[project.TypeID]*schema.Schema

// Options configures a Resolver.
type Options struct {
	// Wrappers lists the nominal names unwrapped to their single type
	// argument. Nil selects DefaultWrappers.
	Wrappers []string
}

// Resolver converts type handles into schemas.
type Resolver struct {
	wrappers map[string]struct{}
}

// New creates a resolver.
func New(opts Options) *Resolver {
	names := opts.Wrappers
	if names == nil {
		names = DefaultWrappers
	}
	wrappers := make(map[string]struct{}, len(names))
	for _, n := range names {
		wrappers[n] = struct{}{}
	}
	return &Resolver{wrappers: wrappers}
}

// Resolve resolves t with a fresh Seen map.
func (r *Resolver) Resolve(t project.Type) *schema.Schema {
	return r.ResolveWith(t, make(Seen))
}

// ResolveWith resolves t, sharing seen with the rest of the current call tree.
// It only mutates seen and always returns a schema.
func (r *Resolver) ResolveWith(t project.Type, seen Seen) *schema.Schema {
	if t == nil {
		return schema.Unknown()
	}

	id := t.ID()
	if _, ok := seen[id]; ok {
		return schema.Circular()
	}
	seen[id] = schema.Unknown()

	if r.isWrapper(t) {
		return r.ResolveWith(t.TypeArguments()[0], seen)
	}

	switch {
	case t.IsString():
		return schema.String()
	case t.IsNumber():
		return schema.Number()
	case t.IsBoolean():
		return schema.Boolean()
	case t.IsArray():
		return schema.Array(r.ResolveWith(t.ArrayElementType(), seen))
	case t.IsUnion():
		members := t.UnionMembers()
		variants := make([]*schema.Schema, 0, len(members))
		for _, m := range members {
			variants = append(variants, r.ResolveWith(m, seen))
		}
		return schema.Union(variants...)
	}

	if members, ok := t.DeclaredMembers(); ok {
		return r.assembleObject(id, members, seen)
	}

	if t.IsObject() {
		return r.assembleObject(id, t.Properties(), seen)
	}

	return schema.Unknown()
}

func (r *Resolver) isWrapper(t project.Type) bool {
	name := t.NominalName()
	if name == "" {
		return false
	}
	if _, ok := r.wrappers[name]; !ok {
		return false
	}
	return len(t.TypeArguments()) == 1
}

// assembleObject builds the object schema for an enumerated member list and
// replaces the placeholder recorded under id with the finished object.
func (r *Resolver) assembleObject(id project.TypeID, members []project.Member, seen Seen) *schema.Schema {
	props := make(schema.Properties, 0, len(members))
	required := make([]string, 0, len(members))
	index := make(map[string]int, len(members))

	for _, m := range members {
		resolved := r.ResolveWith(m.Type, seen)
		// A redeclared name keeps its first position, last declaration wins.
		if i, dup := index[m.Name]; dup {
			props[i].Schema = resolved
			continue
		}
		index[m.Name] = len(props)
		props = append(props, schema.Property{Name: m.Name, Schema: resolved})
		if !m.Optional {
			required = append(required, m.Name)
		}
	}

	obj := schema.Object(props, required)
	seen[id] = obj
	return obj
}
