package controllers

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	pluginsv1alpha1 "github.com/anvil-platform/plugindeps/api/v1alpha1"
	"github.com/anvil-platform/plugindeps/internal/graph"
	"github.com/anvil-platform/plugindeps/internal/resolver"
)

// activationInput is the host state one activation reconcile resolves against.
type activationInput struct {
	Scope resolver.Scope
	// Desired is spec.plugins.
	Desired sets.Set[string]
	// Applied is status.active from the previous reconcile.
	Applied sets.Set[string]
	// Network and PreviousNetwork are the current and previously observed network
	// active sets. Both are empty for the network activation itself.
	Network         sets.Set[string]
	PreviousNetwork sets.Set[string]
}

// activationPlan is what the host should commit.
type activationPlan struct {
	Active      sets.Set[string]
	Deactivated []pluginsv1alpha1.DeactivatedPlugin
	Blocked     []pluginsv1alpha1.BlockedActivation
	// Attempted are the identifiers admission was run for.
	Attempted sets.Set[string]
	// NetworkConflicts are network-active plugins providing a capability an admitted
	// plugin also provides. A site cannot deactivate them, so both stay active.
	NetworkConflicts []string
}

// planActivation resolves one activation: removals cascade first, then the remaining
// requested plugins are admitted as one batch, then admitted plugins push out the
// active plugins they conflict with.
func planActivation(g *graph.Graph, in activationInput) activationPlan {
	newResolver := func(active sets.Set[string]) *resolver.DefaultResolver {
		if in.Scope == resolver.ScopeNetwork {
			return resolver.NewDefault(g, resolver.ActiveSets{Network: active})
		}
		return resolver.NewDefault(g, resolver.ActiveSets{Local: active, Network: in.Network})
	}

	reasons := make(map[string]pluginsv1alpha1.DeactivationReason)
	active := sets.New[string]()
	removed := sets.New[string]()
	for id := range in.Applied {
		switch {
		case !g.Has(id):
			removed.Insert(id)
			reasons[id] = pluginsv1alpha1.DeactivationReasonRemoved
		case !in.Desired.Has(id):
			removed.Insert(id)
		default:
			active.Insert(id)
		}
	}

	// 1) Cascade from everything that stopped being available, including network
	// plugins that were deactivated since the last reconcile.
	seed := removed.Union(in.PreviousNetwork.Difference(in.Network))
	for id := range newResolver(active).ResolveCascade(seed) {
		if active.Has(id) {
			active.Delete(id)
			reasons[id] = pluginsv1alpha1.DeactivationReasonCascade
		}
	}

	// Active plugins can still be left unsatisfied: a display-name dependency no longer
	// resolves once its plugin is uninstalled, and headers can change in place.
	for {
		r := newResolver(active)
		broken := sets.New[string]()
		for _, id := range sets.List(active) {
			if g.IsMustUse(id) {
				continue
			}
			if r.CheckAdmission(id, nil, in.Scope).Decision == resolver.Blocked {
				broken.Insert(id)
			}
		}
		if broken.Len() == 0 {
			break
		}
		for id := range broken.Union(r.ResolveCascade(broken)) {
			if active.Has(id) {
				active.Delete(id)
				reasons[id] = pluginsv1alpha1.DeactivationReasonCascade
			}
		}
	}

	// 2) Admission. Plugins deactivated above are not retried in the same pass.
	plan := activationPlan{Attempted: sets.New[string]()}
	batch := sets.New[string]()
	for _, id := range sets.List(in.Desired.Difference(active)) {
		if _, ok := reasons[id]; ok {
			continue
		}
		plan.Attempted.Insert(id)
		if !g.Has(id) {
			// Nothing is installed under that identifier.
			plan.Blocked = append(plan.Blocked, pluginsv1alpha1.BlockedActivation{Plugin: id, Unsatisfied: []string{id}})
			continue
		}
		batch.Insert(id)
	}

	res := newResolver(active).AdmitBatch(batch, in.Scope)
	for _, adm := range res.Blocked {
		plan.Blocked = append(plan.Blocked, pluginsv1alpha1.BlockedActivation{Plugin: adm.Component, Unsatisfied: adm.Unsatisfied})
	}
	admitted := sets.New(res.Admitted...)

	// 3) Conflicts. Only this activation's own plugins can be deactivated here. An
	// admitted plugin that would lose a provider to the push-out is blocked instead, and
	// the conflicts are recomputed without it.
	var pushed sets.Set[string]
	for {
		r := newResolver(active)
		conflicts := r.ResolveConflicts(admitted)
		pushed = conflicts.Intersection(active)
		remaining := active.Difference(pushed)

		after := newResolver(remaining)
		starved := sets.New[string]()
		for _, id := range sets.List(admitted) {
			adm := after.CheckAdmission(id, admitted, in.Scope)
			if adm.Decision == resolver.Blocked {
				starved.Insert(id)
				plan.Blocked = append(plan.Blocked, pluginsv1alpha1.BlockedActivation{Plugin: id, Unsatisfied: adm.Unsatisfied})
			}
		}
		if starved.Len() == 0 {
			break
		}
		admitted = admitted.Difference(starved)
	}
	for id := range pushed {
		active.Delete(id)
		reasons[id] = pluginsv1alpha1.DeactivationReasonConflict
	}
	plan.Active = active.Union(admitted)

	claimed := sets.New[string]()
	for id := range admitted {
		claimed = claimed.Union(g.ProvidedBy(id))
	}
	for _, id := range sets.List(in.Network.Difference(plan.Active)) {
		if !g.IsMustUse(id) && g.ProvidedBy(id).Intersection(claimed).Len() > 0 {
			plan.NetworkConflicts = append(plan.NetworkConflicts, id)
		}
	}

	for _, id := range sets.List(sets.KeySet(reasons)) {
		plan.Deactivated = append(plan.Deactivated, pluginsv1alpha1.DeactivatedPlugin{Plugin: id, Reason: reasons[id]})
	}
	sort.Slice(plan.Blocked, func(i, j int) bool { return plan.Blocked[i].Plugin < plan.Blocked[j].Plugin })
	return plan
}

// requested is the spec.plugins the host writes back: the active set plus every
// blocked plugin that is still requested, so blocked plugins are retried on the next
// reconcile.
func (p activationPlan) requested(desired sets.Set[string]) sets.Set[string] {
	out := p.Active.Clone()
	for _, b := range p.Blocked {
		if desired.Has(b.Plugin) {
			out.Insert(b.Plugin)
		}
	}
	return out
}

// mergeBlocked keeps earlier blocked records until the plugin is retried or becomes
// active, so a blocked activation stays visible after the request was withdrawn.
func mergeBlocked(previous []pluginsv1alpha1.BlockedActivation, plan activationPlan) []pluginsv1alpha1.BlockedActivation {
	out := make([]pluginsv1alpha1.BlockedActivation, 0, len(previous)+len(plan.Blocked))
	for _, b := range previous {
		if plan.Attempted.Has(b.Plugin) || plan.Active.Has(b.Plugin) {
			continue
		}
		out = append(out, b)
	}
	out = append(out, plan.Blocked...)
	sort.Slice(out, func(i, j int) bool { return out[i].Plugin < out[j].Plugin })
	if len(out) == 0 {
		return nil
	}
	return out
}
