package resolver

import "k8s.io/apimachinery/pkg/util/sets"

// Resolver answers a host's dependency questions against one snapshot of installed
// plugins and their activation state.
//
// Results are sets of identifiers for the host to apply; a Resolver never changes
// host state.
type Resolver interface {
	ResolveCascade(seed sets.Set[string]) sets.Set[string]
	ResolveConflicts(toActivate sets.Set[string]) sets.Set[string]
	CheckAdmission(component string, batch sets.Set[string], scope Scope) Admission
}
