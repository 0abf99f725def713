// Package graph builds the provides/depends graph of installed plugins.
package graph

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// Graph is the dependency graph of one resolution session. It is built from a
// snapshot of component metadata and is read-only afterwards.
type Graph struct {
	*CapabilityIndex

	components map[string]*Metadata
	mustUse    sets.Set[string]
}

// Build normalizes components and indexes them. Components without an identifier are
// ignored; when an identifier is listed twice the first entry wins.
func Build(components []Component) *Graph {
	ids := sets.New[string]()
	unique := make([]Component, 0, len(components))
	for _, c := range components {
		if c.ID == "" || ids.Has(c.ID) {
			continue
		}
		ids.Insert(c.ID)
		unique = append(unique, c)
	}

	names := newNameIndex(unique)
	g := &Graph{
		components: make(map[string]*Metadata, len(unique)),
		mustUse:    sets.New[string](),
	}
	for _, c := range unique {
		md := parse(c, names, ids)
		g.components[c.ID] = md
		if md.MustUse {
			g.mustUse.Insert(c.ID)
		}
	}
	g.CapabilityIndex = newCapabilityIndex(g.components)
	return g
}

// Has reports whether id is an installed component.
func (g *Graph) Has(id string) bool {
	_, ok := g.components[id]
	return ok
}

// Len returns the number of installed components.
func (g *Graph) Len() int {
	return len(g.components)
}

// IDs returns every installed identifier, sorted.
func (g *Graph) IDs() []string {
	return sets.List(sets.KeySet(g.components))
}

// Metadata returns the normalized metadata of id.
func (g *Graph) Metadata(id string) (*Metadata, bool) {
	md, ok := g.components[id]
	return md, ok
}

// Name returns the display name of id, or id itself when it is not installed.
func (g *Graph) Name(id string) string {
	if md, ok := g.components[id]; ok {
		return md.Name
	}
	return id
}

// DependenciesOf returns the capabilities id requires.
func (g *Graph) DependenciesOf(id string) sets.Set[string] {
	if md, ok := g.components[id]; ok {
		return md.Depends.Clone()
	}
	return sets.New[string]()
}

// ProvidedBy returns the capabilities id provides. A component that is not installed
// (for example one that was just deleted) still provides itself.
func (g *Graph) ProvidedBy(id string) sets.Set[string] {
	if md, ok := g.components[id]; ok {
		return md.Provides.Clone()
	}
	return sets.New(id)
}

// MustUse returns the always-on components.
func (g *Graph) MustUse() sets.Set[string] {
	return g.mustUse.Clone()
}

// IsMustUse reports whether id is always on.
func (g *Graph) IsMustUse(id string) bool {
	return g.mustUse.Has(id)
}

// DependentsOf returns the components declaring a dependency that id can satisfy,
// sorted.
func (g *Graph) DependentsOf(id string) []string {
	out := sets.New[string]()
	for other, md := range g.components {
		if other == id {
			continue
		}
		for capability := range md.Depends {
			if g.ProvidersOf(capability).Has(id) {
				out.Insert(other)
				break
			}
		}
	}
	return sets.List(out)
}
