package resolver

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Scope selects which active set an activation is checked against.
type Scope string

const (
	// ScopeLocal is a single site (tenant). Network-active plugins count as active.
	ScopeLocal Scope = "local"
	// ScopeNetwork is network-wide activation. Only network-active plugins count.
	ScopeNetwork Scope = "network"
)

// ParseScope accepts "local", "site" and "network". An empty string means local.
func ParseScope(raw string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "local", "site":
		return ScopeLocal, nil
	case "network":
		return ScopeNetwork, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, raw)
	}
}

// ActiveSets is the host-tracked activation state the resolver reads.
//
// Local is nil when resolving for the network itself.
type ActiveSets struct {
	Local   sets.Set[string]
	Network sets.Set[string]
}

// Decision is the outcome of an activation attempt.
type Decision int

const (
	Pending Decision = iota
	Admitted
	Blocked
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "Pending"
	case Admitted:
		return "Admitted"
	case Blocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}

// Admission is the result of checking one component.
type Admission struct {
	Component string
	Decision  Decision
	// Unsatisfied lists the required capabilities with no active provider, sorted.
	Unsatisfied []string
}

// BatchResult splits a bulk activation into admitted and blocked components.
type BatchResult struct {
	Admitted []string
	Blocked  []Admission
}

// RequirementState classifies one required capability for presentation.
type RequirementState string

const (
	RequirementSatisfied RequirementState = "satisfied"
	// RequirementUnsatisfied has no provider active on the site.
	RequirementUnsatisfied RequirementState = "unsatisfied"
	// RequirementUnsatisfiedNetwork is satisfied on the site but not network-wide.
	RequirementUnsatisfiedNetwork RequirementState = "unsatisfied_network"
)

// Requirement describes one dependency of a component.
type Requirement struct {
	Capability string
	// Providers are the installed providers, sorted by identifier.
	Providers []Provider
	State     RequirementState
}

type Provider struct {
	ID   string
	Name string
}
