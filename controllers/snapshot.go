package controllers

import (
	"sort"

	pluginsv1alpha1 "github.com/anvil-platform/plugindeps/api/v1alpha1"
	"github.com/anvil-platform/plugindeps/internal/graph"
)

// pluginID returns the identifier of p: spec.file, or the object name when unset.
func pluginID(p *pluginsv1alpha1.Plugin) string {
	if p.Spec.File != "" {
		return p.Spec.File
	}
	return p.Name
}

// componentsFromPlugins converts the installed Plugin objects into graph input,
// ordered by object name so duplicate identifiers resolve the same way every time.
func componentsFromPlugins(items []pluginsv1alpha1.Plugin) []graph.Component {
	sorted := make([]*pluginsv1alpha1.Plugin, 0, len(items))
	for i := range items {
		sorted = append(sorted, &items[i])
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	out := make([]graph.Component, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, graph.Component{
			ID:       pluginID(p),
			Name:     p.Spec.Name,
			Version:  p.Spec.Version,
			Provides: p.Spec.Provides,
			Depends:  p.Spec.Depends,
			MustUse:  p.Spec.MustUse,
		})
	}
	return out
}
