package graph

import (
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/plugindeps/internal/semver"
)

// Component is the raw metadata of one installed plugin, as read by the host.
//
// Provides and Depends are the unparsed header values.
type Component struct {
	ID       string
	Name     string
	Version  string
	Provides string
	Depends  string
	// MustUse components are always on: they provide capabilities but are never
	// deactivated by a cascade or a conflict.
	MustUse bool
}

// Metadata is the normalized form of a Component.
type Metadata struct {
	ID       string
	Name     string
	Version  string
	Provides sets.Set[string]
	Depends  sets.Set[string]
	MustUse  bool
}

// SplitList splits a raw header value on commas, trimming whitespace and dropping
// empty tokens. An empty or absent header yields nil.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// nameIndex maps display names to identifiers.
type nameIndex map[string]string

func newNameIndex(components []Component) nameIndex {
	byName := make(map[string][]string)
	for _, c := range components {
		name := strings.TrimSpace(c.Name)
		if name == "" || c.ID == "" {
			continue
		}
		byName[name] = append(byName[name], c.ID)
	}
	idx := make(nameIndex, len(byName))
	for name, ids := range byName {
		// Two plugins sharing a display name: the smallest identifier wins.
		sort.Strings(ids)
		idx[name] = ids[0]
	}
	return idx
}

// resolve rewrites a dependency token to an identifier. Identifiers win over names;
// unknown tokens are kept as virtual capability names.
func (n nameIndex) resolve(token string, ids sets.Set[string]) string {
	if ids.Has(token) {
		return token
	}
	if id, ok := n[token]; ok {
		return id
	}
	return token
}

// parse normalizes c. Names referenced in Depends are resolved against names.
func parse(c Component, names nameIndex, ids sets.Set[string]) *Metadata {
	md := &Metadata{
		ID:       c.ID,
		Name:     strings.TrimSpace(c.Name),
		Provides: sets.New(c.ID),
		Depends:  sets.New[string](),
		MustUse:  c.MustUse,
	}
	if md.Name == "" {
		md.Name = c.ID
	}
	md.Version, _ = semver.Normalize(c.Version)
	md.Provides.Insert(SplitList(c.Provides)...)
	for _, token := range SplitList(c.Depends) {
		md.Depends.Insert(names.resolve(token, ids))
	}
	return md
}
