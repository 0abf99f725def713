package graph

import "k8s.io/apimachinery/pkg/util/sets"

// CapabilityIndex maps capability names to the components providing them.
type CapabilityIndex struct {
	ids       sets.Set[string]
	providers map[string]sets.Set[string]
}

func newCapabilityIndex(components map[string]*Metadata) *CapabilityIndex {
	idx := &CapabilityIndex{
		ids:       sets.New[string](),
		providers: make(map[string]sets.Set[string]),
	}
	for id, md := range components {
		idx.ids.Insert(id)
		for capability := range md.Provides {
			if capability == id {
				continue
			}
			if idx.providers[capability] == nil {
				idx.providers[capability] = sets.New[string]()
			}
			idx.providers[capability].Insert(id)
		}
	}
	return idx
}

// ProvidersOf returns the components providing capability.
//
// A capability equal to an installed identifier is provided by that component only,
// so a virtual claim can never shadow a real plugin. The result may be empty.
func (idx *CapabilityIndex) ProvidersOf(capability string) sets.Set[string] {
	if idx.ids.Has(capability) {
		return sets.New(capability)
	}
	return idx.providers[capability].Clone()
}

// Satisfied reports whether at least one provider of capability is in active.
func (idx *CapabilityIndex) Satisfied(capability string, active sets.Set[string]) bool {
	if idx.ids.Has(capability) {
		return active.Has(capability)
	}
	for id := range idx.providers[capability] {
		if active.Has(id) {
			return true
		}
	}
	return false
}
