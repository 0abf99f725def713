package resolver

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// ResolveCascade returns every active component that must be deactivated, directly or
// transitively, because the components in seed are going away. Seed members are not
// part of the result.
func (r *DefaultResolver) ResolveCascade(seed sets.Set[string]) sets.Set[string] {
	return r.cascade(seed, r.view(ScopeLocal))
}

// cascade runs the worklist over view. A component is found when one of its required
// capabilities was provided by the previous round and has no provider left in view.
func (r *DefaultResolver) cascade(seed, view sets.Set[string]) sets.Set[string] {
	marked := sets.New[string]()
	if seed.Len() == 0 {
		return marked
	}

	visited := seed.Clone()
	view = view.Difference(seed).Union(r.graph.MustUse())
	queue := sets.List(seed)

	for len(queue) > 0 {
		removed := sets.New[string]()
		for _, id := range queue {
			removed = removed.Union(r.graph.ProvidedBy(id))
		}

		var found []string
		for _, candidate := range sets.List(view) {
			if visited.Has(candidate) || r.graph.IsMustUse(candidate) {
				continue
			}
			if r.starved(candidate, removed, view) {
				found = append(found, candidate)
			}
		}

		for _, id := range found {
			visited.Insert(id)
			marked.Insert(id)
			view.Delete(id)
		}
		queue = found
	}
	return marked
}

// starved reports whether component requires a capability in removed that nothing in
// view still provides.
func (r *DefaultResolver) starved(component string, removed, view sets.Set[string]) bool {
	for capability := range r.graph.DependenciesOf(component) {
		if !removed.Has(capability) {
			continue
		}
		if !r.graph.Satisfied(capability, view) {
			return true
		}
	}
	return false
}
