package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/plugindeps/internal/graph"
	"github.com/anvil-platform/plugindeps/internal/resolver"
)

// Component is one installed plugin as sent over the wire.
type Component struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	Provides string `json:"provides,omitempty"`
	Depends  string `json:"depends,omitempty"`
	MustUse  bool   `json:"mustUse,omitempty"`
}

// Active is the caller's activation state.
type Active struct {
	Local   []string `json:"local,omitempty"`
	Network []string `json:"network,omitempty"`
}

// Request carries the whole session: every call ships the component snapshot and the
// active sets, and the server builds a fresh graph from them.
type Request struct {
	Components []Component `json:"components"`
	Active     Active      `json:"active"`

	// Seed is read by ResolveCascade.
	Seed []string `json:"seed,omitempty"`
	// ToActivate is read by ResolveConflicts.
	ToActivate []string `json:"toActivate,omitempty"`
	// Component, Batch and Scope are read by CheckAdmission. DescribeDependencies
	// reads Component only.
	Component string   `json:"component,omitempty"`
	Batch     []string `json:"batch,omitempty"`
	Scope     string   `json:"scope,omitempty"`
}

type componentsResponse struct {
	Components []string `json:"components"`
}

// AdmissionResponse is the result of CheckAdmission.
type AdmissionResponse struct {
	Component   string   `json:"component"`
	Decision    string   `json:"decision"`
	Unsatisfied []string `json:"unsatisfied,omitempty"`
}

// Requirement is one entry of a DescribeDependencies report.
type Requirement struct {
	Capability string     `json:"capability"`
	State      string     `json:"state"`
	Providers  []Provider `json:"providers,omitempty"`
}

type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type describeResponse struct {
	Requirements []Requirement `json:"requirements"`
}

// session builds the graph and resolver a request describes.
func (req Request) session() *resolver.DefaultResolver {
	components := make([]graph.Component, 0, len(req.Components))
	for _, c := range req.Components {
		components = append(components, graph.Component{
			ID:       c.ID,
			Name:     c.Name,
			Version:  c.Version,
			Provides: c.Provides,
			Depends:  c.Depends,
			MustUse:  c.MustUse,
		})
	}
	return resolver.NewDefault(graph.Build(components), resolver.ActiveSets{
		Local:   sets.New(req.Active.Local...),
		Network: sets.New(req.Active.Network...),
	})
}

// toStruct converts any JSON-encodable value into a structpb.Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return out, nil
}

// fromStruct decodes s into v.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return ErrEmptyMessage
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
