package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/util/sets"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: "  ", want: nil},
		{raw: "a/a.php", want: []string{"a/a.php"}},
		{raw: " a/a.php ,, b/b.php,", want: []string{"a/a.php", "b/b.php"}},
		{raw: "Akismet, Jetpack by WordPress.com", want: []string{"Akismet", "Jetpack by WordPress.com"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitList(tt.raw)); diff != "" {
			t.Fatalf("SplitList(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestBuild_SelfProvision(t *testing.T) {
	g := Build([]Component{
		{ID: "a/a.php"},
		{ID: "b/b.php", Provides: "svc"},
		{ID: "c/c.php", Provides: "a/a.php"},
	})
	for _, id := range g.IDs() {
		if !g.ProvidersOf(id).Has(id) {
			t.Fatalf("expected %s to provide itself", id)
		}
		if !g.ProvidedBy(id).Has(id) {
			t.Fatalf("expected ProvidedBy(%s) to include itself", id)
		}
	}
}

func TestProvidersOf_RealIdentifierWinsOverVirtualClaim(t *testing.T) {
	g := Build([]Component{
		{ID: "a/a.php"},
		{ID: "impostor/impostor.php", Provides: "a/a.php"},
	})
	if diff := cmp.Diff([]string{"a/a.php"}, sets.List(g.ProvidersOf("a/a.php"))); diff != "" {
		t.Fatalf("ProvidersOf mismatch (-want +got):\n%s", diff)
	}
}

func TestProvidersOf_Virtual(t *testing.T) {
	g := Build([]Component{
		{ID: "p1/p1.php", Provides: "cache, object-cache"},
		{ID: "p2/p2.php", Provides: "cache"},
		{ID: "c/c.php", Depends: "cache"},
	})
	if diff := cmp.Diff([]string{"p1/p1.php", "p2/p2.php"}, sets.List(g.ProvidersOf("cache"))); diff != "" {
		t.Fatalf("ProvidersOf(cache) mismatch (-want +got):\n%s", diff)
	}
	if got := g.ProvidersOf("missing"); got.Len() != 0 {
		t.Fatalf("expected no providers for unknown capability, got %v", sets.List(got))
	}
	if !g.Satisfied("cache", sets.New("p2/p2.php")) {
		t.Fatalf("expected cache to be satisfied by p2 alone")
	}
	if g.Satisfied("cache", sets.New("c/c.php")) {
		t.Fatalf("expected cache to be unsatisfied without a provider")
	}
}

func TestBuild_ResolvesDisplayNames(t *testing.T) {
	g := Build([]Component{
		{ID: "akismet/akismet.php", Name: "Akismet"},
		{ID: "spam-tools/spam-tools.php", Name: "Spam Tools", Depends: "Akismet, Unknown Thing, akismet/akismet.php"},
	})
	want := []string{"Unknown Thing", "akismet/akismet.php"}
	if diff := cmp.Diff(want, sets.List(g.DependenciesOf("spam-tools/spam-tools.php"))); diff != "" {
		t.Fatalf("DependenciesOf mismatch (-want +got):\n%s", diff)
	}
	if g.Name("akismet/akismet.php") != "Akismet" {
		t.Fatalf("expected display name to be kept for presentation")
	}
	if g.Name("gone/gone.php") != "gone/gone.php" {
		t.Fatalf("expected unknown identifier to be its own name")
	}
}

func TestBuild_AmbiguousNamesPickSmallestIdentifier(t *testing.T) {
	g := Build([]Component{
		{ID: "z/seo.php", Name: "SEO"},
		{ID: "a/seo.php", Name: "SEO"},
		{ID: "c/c.php", Depends: "SEO"},
	})
	if diff := cmp.Diff([]string{"a/seo.php"}, sets.List(g.DependenciesOf("c/c.php"))); diff != "" {
		t.Fatalf("DependenciesOf mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_IdentifierTokenIsNotRewrittenByName(t *testing.T) {
	// "b/b.php" is both an identifier and another plugin's display name.
	g := Build([]Component{
		{ID: "a/a.php", Name: "b/b.php"},
		{ID: "b/b.php"},
		{ID: "c/c.php", Depends: "b/b.php"},
	})
	if diff := cmp.Diff([]string{"b/b.php"}, sets.List(g.DependenciesOf("c/c.php"))); diff != "" {
		t.Fatalf("DependenciesOf mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_MalformedMetadata(t *testing.T) {
	g := Build([]Component{
		{ID: ""},
		{ID: "a/a.php", Provides: " , ", Depends: ""},
		{ID: "a/a.php", Depends: "should-be-ignored"},
	})
	if g.Len() != 1 {
		t.Fatalf("expected 1 component, got %d", g.Len())
	}
	if g.DependenciesOf("a/a.php").Len() != 0 {
		t.Fatalf("expected empty dependencies for first entry")
	}
	if diff := cmp.Diff([]string{"a/a.php"}, sets.List(g.ProvidedBy("a/a.php"))); diff != "" {
		t.Fatalf("ProvidedBy mismatch (-want +got):\n%s", diff)
	}
}

func TestProvidedBy_UnknownComponentProvidesItself(t *testing.T) {
	g := Build(nil)
	if diff := cmp.Diff([]string{"gone/gone.php"}, sets.List(g.ProvidedBy("gone/gone.php"))); diff != "" {
		t.Fatalf("ProvidedBy mismatch (-want +got):\n%s", diff)
	}
	if g.DependenciesOf("gone/gone.php").Len() != 0 {
		t.Fatalf("expected no dependencies for unknown component")
	}
}

func TestMetadata_VersionNormalized(t *testing.T) {
	g := Build([]Component{
		{ID: "a/a.php", Version: "v1.2"},
		{ID: "b/b.php", Version: "nightly"},
	})
	a, _ := g.Metadata("a/a.php")
	b, _ := g.Metadata("b/b.php")
	if a.Version != "1.2.0" {
		t.Fatalf("expected normalized version 1.2.0, got %q", a.Version)
	}
	if b.Version != "nightly" {
		t.Fatalf("expected raw version to be kept, got %q", b.Version)
	}
}

func TestDependentsOf(t *testing.T) {
	g := Build([]Component{
		{ID: "a/a.php", Provides: "svc"},
		{ID: "b/b.php", Depends: "svc"},
		{ID: "c/c.php", Depends: "a/a.php"},
		{ID: "d/d.php", Depends: "other"},
	})
	if diff := cmp.Diff([]string{"b/b.php", "c/c.php"}, g.DependentsOf("a/a.php")); diff != "" {
		t.Fatalf("DependentsOf mismatch (-want +got):\n%s", diff)
	}
}

func TestMustUse(t *testing.T) {
	g := Build([]Component{
		{ID: "mu.php", MustUse: true, Provides: "object-cache"},
		{ID: "a/a.php"},
	})
	if !g.IsMustUse("mu.php") || g.IsMustUse("a/a.php") {
		t.Fatalf("unexpected must-use classification")
	}
	if diff := cmp.Diff([]string{"mu.php"}, sets.List(g.MustUse())); diff != "" {
		t.Fatalf("MustUse mismatch (-want +got):\n%s", diff)
	}
}
