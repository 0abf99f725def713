package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Plugin is one installed plugin and its declared dependency headers.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=plg
// +kubebuilder:printcolumn:name="File",type=string,JSONPath=`.spec.file`
// +kubebuilder:printcolumn:name="Name",type=string,JSONPath=`.spec.name`
// +kubebuilder:printcolumn:name="Version",type=string,JSONPath=`.status.version`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type Plugin struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PluginSpec   `json:"spec"`
	Status PluginStatus `json:"status,omitempty"`
}

type PluginSpec struct {
	// File is the plugin identifier, e.g. "akismet/akismet.php".
	File string `json:"file"`
	// Name is the display name.
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	// Provides and Depends are the raw, comma separated header values.
	Provides string `json:"provides,omitempty"`
	Depends  string `json:"depends,omitempty"`
	// MustUse plugins are always active.
	MustUse bool `json:"mustUse,omitempty"`
}

type PluginStatus struct {
	ObservedGeneration int64  `json:"observedGeneration,omitempty"`
	Version            string `json:"version,omitempty"`
	// Provides and Depends are the parsed headers. Depends references identifiers
	// wherever a display name could be resolved.
	Provides   []string `json:"provides,omitempty"`
	Depends    []string `json:"depends,omitempty"`
	RequiredBy []string `json:"requiredBy,omitempty"`
}

// +kubebuilder:object:root=true
type PluginList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Plugin `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Plugin{}, &PluginList{})
}
