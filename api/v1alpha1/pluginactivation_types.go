package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PluginActivation is the desired active plugin set of one site, or of the network.
//
// A namespace is one network and holds at most one activation with scope "network".
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=pa
// +kubebuilder:printcolumn:name="Scope",type=string,JSONPath=`.spec.scope`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type PluginActivation struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PluginActivationSpec   `json:"spec"`
	Status PluginActivationStatus `json:"status,omitempty"`
}

type PluginActivationSpec struct {
	// +kubebuilder:validation:Enum=site;network
	Scope ActivationScope `json:"scope,omitempty"`
	// Plugins are the identifiers (Plugin spec.file) that should be active.
	Plugins []string `json:"plugins,omitempty"`
}

type BlockedActivation struct {
	Plugin      string   `json:"plugin"`
	Unsatisfied []string `json:"unsatisfied,omitempty"`
}

type DeactivatedPlugin struct {
	Plugin string             `json:"plugin"`
	Reason DeactivationReason `json:"reason"`
}

type PluginActivationStatus struct {
	ObservedGeneration int64  `json:"observedGeneration,omitempty"`
	Phase              string `json:"phase,omitempty"`
	Message            string `json:"message,omitempty"`
	// Active is the applied active set.
	Active []string `json:"active,omitempty"`
	// NetworkPlugins is the network active set Active was computed against (sites only).
	NetworkPlugins      []string            `json:"networkPlugins,omitempty"`
	Blocked             []BlockedActivation `json:"blocked,omitempty"`
	RecentlyDeactivated []DeactivatedPlugin `json:"recentlyDeactivated,omitempty"`
	Conditions          []metav1.Condition  `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
type PluginActivationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []PluginActivation `json:"items"`
}

func init() {
	SchemeBuilder.Register(&PluginActivation{}, &PluginActivationList{})
}
