package resolver

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// ResolveConflicts returns the active components that must be deactivated so that
// toActivate can be activated: those providing a capability a to-activate component
// also provides, plus everything cascading from their removal.
//
// No minimality check is made: a conflicting component is returned even when another
// active provider would keep the capability satisfied.
func (r *DefaultResolver) ResolveConflicts(toActivate sets.Set[string]) sets.Set[string] {
	conflicting := sets.New[string]()
	if toActivate.Len() == 0 {
		return conflicting
	}

	claimed := sets.New[string]()
	for id := range toActivate {
		claimed = claimed.Union(r.graph.ProvidedBy(id))
	}

	view := r.view(ScopeLocal)
	for _, candidate := range sets.List(view.Difference(toActivate)) {
		if r.graph.IsMustUse(candidate) {
			continue
		}
		if r.graph.ProvidedBy(candidate).Intersection(claimed).Len() > 0 {
			conflicting.Insert(candidate)
		}
	}
	if conflicting.Len() == 0 {
		return conflicting
	}

	// Dependents may still be served by the components being activated.
	cascaded := r.cascade(conflicting, view.Union(toActivate))
	return conflicting.Union(cascaded).Difference(toActivate)
}
