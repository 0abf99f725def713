package resolver

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// CheckAdmission decides whether component may be activated in scope. Members of
// batch, and component itself, count as active: a bulk activation satisfies its own
// dependencies.
func (r *DefaultResolver) CheckAdmission(component string, batch sets.Set[string], scope Scope) Admission {
	adm := Admission{Component: component, Decision: Pending}

	view := r.view(scope).Union(batch)
	view.Insert(component)

	for _, capability := range sets.List(r.graph.DependenciesOf(component)) {
		if !r.graph.Satisfied(capability, view) {
			adm.Unsatisfied = append(adm.Unsatisfied, capability)
		}
	}
	if len(adm.Unsatisfied) > 0 {
		adm.Decision = Blocked
		return adm
	}
	adm.Decision = Admitted
	return adm
}

// AdmitBatch checks every member of batch against the active set extended with the
// whole batch. Results are ordered by identifier.
func (r *DefaultResolver) AdmitBatch(batch sets.Set[string], scope Scope) BatchResult {
	var res BatchResult
	for _, id := range sets.List(batch) {
		adm := r.CheckAdmission(id, batch, scope)
		if adm.Decision == Blocked {
			res.Blocked = append(res.Blocked, adm)
			continue
		}
		res.Admitted = append(res.Admitted, id)
	}
	return res
}
