package v1alpha1

type ActivationScope string

type DeactivationReason string

const (
	// ActivationScopeSite activates plugins on one site (tenant).
	ActivationScopeSite ActivationScope = "site"
	// ActivationScopeNetwork activates plugins for every site in the namespace.
	ActivationScopeNetwork ActivationScope = "network"

	// DeactivationReasonRemoved: the plugin is no longer installed.
	DeactivationReasonRemoved DeactivationReason = "removed"
	// DeactivationReasonCascade: a capability the plugin required lost its last provider.
	DeactivationReasonCascade DeactivationReason = "cascade"
	// DeactivationReasonConflict: a newly activated plugin claims a capability this one provides.
	DeactivationReasonConflict DeactivationReason = "conflict"
)
