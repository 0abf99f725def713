package resolver

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/plugindeps/internal/graph"
)

// DefaultResolver is the set-closure resolver wired into the controller and the
// dependency service. It is bound to one graph and one activation snapshot.
type DefaultResolver struct {
	graph  *graph.Graph
	active ActiveSets
}

var _ Resolver = (*DefaultResolver)(nil)

func NewDefault(g *graph.Graph, active ActiveSets) *DefaultResolver {
	return &DefaultResolver{graph: g, active: active}
}

// Graph returns the graph the resolver was built with.
func (r *DefaultResolver) Graph() *graph.Graph {
	return r.graph
}

// view returns the components counted as active for scope. Must-use components are
// always part of it.
func (r *DefaultResolver) view(scope Scope) sets.Set[string] {
	out := r.graph.MustUse().Union(r.active.Network)
	if scope == ScopeLocal {
		out = out.Union(r.active.Local)
	}
	return out
}

// DescribeDependencies lists every capability component requires, with its providers
// and whether it is satisfied on the site and network-wide.
func (r *DefaultResolver) DescribeDependencies(component string) []Requirement {
	local := r.view(ScopeLocal)
	network := r.view(ScopeNetwork)

	deps := sets.List(r.graph.DependenciesOf(component))
	out := make([]Requirement, 0, len(deps))
	for _, capability := range deps {
		req := Requirement{Capability: capability, State: RequirementSatisfied}
		for _, id := range sets.List(r.graph.ProvidersOf(capability)) {
			req.Providers = append(req.Providers, Provider{ID: id, Name: r.graph.Name(id)})
		}
		switch {
		case !r.graph.Satisfied(capability, local):
			req.State = RequirementUnsatisfied
		case !r.graph.Satisfied(capability, network):
			req.State = RequirementUnsatisfiedNetwork
		}
		out = append(out, req)
	}
	return out
}
