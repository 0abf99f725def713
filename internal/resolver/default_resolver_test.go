package resolver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/plugindeps/internal/graph"
)

func local(g *graph.Graph, active ...string) *DefaultResolver {
	return NewDefault(g, ActiveSets{Local: sets.New(active...)})
}

func assertSet(t *testing.T, want []string, got sets.Set[string]) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, sets.List(got)); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCascade_DirectDependent(t *testing.T) {
	// Scenario 1.
	g := graph.Build([]graph.Component{
		{ID: "A"},
		{ID: "B", Depends: "A"},
	})
	r := local(g, "A", "B")
	assertSet(t, []string{"B"}, r.ResolveCascade(sets.New("A")))
}

func TestResolveCascade_VirtualProvider(t *testing.T) {
	// Scenario 2.
	components := []graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "B", Provides: "svc"},
		{ID: "C", Depends: "svc"},
	}
	g := graph.Build(components)

	assertSet(t, []string{"C"}, local(g, "A", "C").ResolveCascade(sets.New("A")))
	assertSet(t, nil, local(g, "A", "B", "C").ResolveCascade(sets.New("A")))
	assertSet(t, []string{"C"}, local(g, "A", "B", "C").ResolveCascade(sets.New("A", "B")))
}

func TestResolveCascade_EmptySeed(t *testing.T) {
	g := graph.Build([]graph.Component{{ID: "A"}, {ID: "B", Depends: "A"}})
	assertSet(t, nil, local(g, "A", "B").ResolveCascade(sets.New[string]()))
	assertSet(t, nil, local(g, "A", "B").ResolveCascade(nil))
}

func TestResolveCascade_Transitive(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "db"},
		{ID: "B", Depends: "db", Provides: "orm"},
		{ID: "C", Depends: "orm"},
		{ID: "D", Depends: "C"},
		{ID: "E"},
	})
	r := local(g, "A", "B", "C", "D", "E")
	assertSet(t, []string{"B", "C", "D"}, r.ResolveCascade(sets.New("A")))
}

func TestResolveCascade_TerminatesOnCycle(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "x", Depends: "y"},
		{ID: "B", Provides: "y", Depends: "x"},
		{ID: "C", Depends: "A"},
	})
	r := local(g, "A", "B", "C")
	assertSet(t, []string{"B", "C"}, r.ResolveCascade(sets.New("A")))
}

func TestResolveCascade_SelfDependency(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Depends: "A"},
		{ID: "B", Depends: "A"},
	})
	assertSet(t, []string{"B"}, local(g, "A", "B").ResolveCascade(sets.New("A")))
}

func TestResolveCascade_IgnoresInactiveAndMustUse(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "B", Depends: "svc"},
		{ID: "mu.php", MustUse: true, Depends: "svc"},
		{ID: "C", Depends: "svc"},
	})
	// C is installed but not active.
	assertSet(t, []string{"B"}, local(g, "A", "B").ResolveCascade(sets.New("A")))
}

func TestResolveCascade_MustUseKeepsCapabilitySatisfied(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "object-cache"},
		{ID: "mu.php", MustUse: true, Provides: "object-cache"},
		{ID: "B", Depends: "object-cache"},
	})
	assertSet(t, nil, local(g, "A", "B").ResolveCascade(sets.New("A")))
}

func TestResolveCascade_NetworkProviderKeepsSiteDependents(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "N", Provides: "svc"},
		{ID: "B", Depends: "svc"},
	})
	r := NewDefault(g, ActiveSets{Local: sets.New("A", "B"), Network: sets.New("N")})
	assertSet(t, nil, r.ResolveCascade(sets.New("A")))
}

func TestResolveCascade_UninstalledSeed(t *testing.T) {
	// The removed plugin is no longer in the snapshot; it still provided itself.
	g := graph.Build([]graph.Component{
		{ID: "B", Depends: "A"},
	})
	assertSet(t, []string{"B"}, local(g, "A", "B").ResolveCascade(sets.New("A")))
}

func TestResolveCascade_NeverOmitsSoleProviderDependents(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "P", Provides: "a, b"},
		{ID: "X", Depends: "a"},
		{ID: "Y", Depends: "b"},
		{ID: "Z", Depends: "c"},
	})
	got := local(g, "P", "X", "Y", "Z").ResolveCascade(sets.New("P"))
	for _, id := range []string{"X", "Y"} {
		if !got.Has(id) {
			t.Fatalf("expected %s in cascade, got %v", id, sets.List(got))
		}
	}
	if got.Has("Z") {
		t.Fatalf("did not expect Z in cascade")
	}
}

func TestResolveConflicts_SharedCapability(t *testing.T) {
	// Scenario 3.
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "B", Provides: "svc"},
	})
	assertSet(t, []string{"A"}, local(g, "A").ResolveConflicts(sets.New("B")))
}

func TestResolveConflicts_CascadesFromConflicting(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "B", Provides: "svc"},
		{ID: "C", Depends: "A"},
		{ID: "D", Depends: "svc"},
		{ID: "E", Depends: "C"},
	})
	// D is still served by B once it is active.
	got := local(g, "A", "C", "D", "E").ResolveConflicts(sets.New("B"))
	assertSet(t, []string{"A", "C", "E"}, got)
}

func TestResolveConflicts_NoMinimality(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "A2", Provides: "svc"},
		{ID: "B", Provides: "svc"},
	})
	assertSet(t, []string{"A", "A2"}, local(g, "A", "A2").ResolveConflicts(sets.New("B")))
}

func TestResolveConflicts_NeverSelf(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "B", Provides: "svc"},
	})
	assertSet(t, nil, local(g, "A", "B").ResolveConflicts(sets.New("A", "B")))
	assertSet(t, nil, local(g, "A").ResolveConflicts(sets.New[string]()))
}

func TestResolveConflicts_MustUseNeverConflicts(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "mu.php", MustUse: true, Provides: "svc"},
		{ID: "B", Provides: "svc"},
	})
	assertSet(t, nil, local(g).ResolveConflicts(sets.New("B")))
}

func TestCheckAdmission_UnknownCapabilityBlocks(t *testing.T) {
	// Scenario 4.
	g := graph.Build([]graph.Component{
		{ID: "D", Depends: "E"},
	})
	adm := local(g).CheckAdmission("D", nil, ScopeLocal)
	if adm.Decision != Blocked {
		t.Fatalf("expected Blocked, got %s", adm.Decision)
	}
	if diff := cmp.Diff([]string{"E"}, adm.Unsatisfied); diff != "" {
		t.Fatalf("Unsatisfied mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckAdmission_VirtualDependency(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "P1", Provides: "X"},
		{ID: "P2", Provides: "X"},
		{ID: "C", Depends: "X"},
	})
	adm := local(g, "P2").CheckAdmission("C", nil, ScopeLocal)
	if adm.Decision != Admitted {
		t.Fatalf("expected Admitted, got %s (unsatisfied %v)", adm.Decision, adm.Unsatisfied)
	}
}

func TestCheckAdmission_NoDependencies(t *testing.T) {
	g := graph.Build([]graph.Component{{ID: "A"}})
	if adm := local(g).CheckAdmission("A", nil, ScopeLocal); adm.Decision != Admitted {
		t.Fatalf("expected Admitted, got %s", adm.Decision)
	}
}

func TestCheckAdmission_Scope(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A"},
		{ID: "B", Depends: "A"},
	})
	siteOnly := NewDefault(g, ActiveSets{Local: sets.New("A")})
	if adm := siteOnly.CheckAdmission("B", nil, ScopeLocal); adm.Decision != Admitted {
		t.Fatalf("expected site activation to be admitted")
	}
	if adm := siteOnly.CheckAdmission("B", nil, ScopeNetwork); adm.Decision != Blocked {
		t.Fatalf("expected network activation to be blocked")
	}

	networkWide := NewDefault(g, ActiveSets{Network: sets.New("A")})
	if adm := networkWide.CheckAdmission("B", nil, ScopeLocal); adm.Decision != Admitted {
		t.Fatalf("expected network-active provider to satisfy site activation")
	}
	if adm := networkWide.CheckAdmission("B", nil, ScopeNetwork); adm.Decision != Admitted {
		t.Fatalf("expected network activation to be admitted")
	}
}

func TestCheckAdmission_MustUseSatisfies(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "mu.php", MustUse: true, Provides: "object-cache"},
		{ID: "B", Depends: "object-cache"},
	})
	if adm := local(g).CheckAdmission("B", nil, ScopeNetwork); adm.Decision != Admitted {
		t.Fatalf("expected must-use provider to satisfy, got %v", adm.Unsatisfied)
	}
}

func TestAdmitBatch(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "A", Provides: "svc"},
		{ID: "B", Depends: "svc"},
		{ID: "C", Depends: "B, missing"},
		{ID: "D", Depends: "D"},
	})
	r := local(g)

	res := r.AdmitBatch(sets.New("A", "B", "C", "D"), ScopeLocal)
	if diff := cmp.Diff([]string{"A", "B", "D"}, res.Admitted); diff != "" {
		t.Fatalf("Admitted mismatch (-want +got):\n%s", diff)
	}
	want := []Admission{{Component: "C", Decision: Blocked, Unsatisfied: []string{"missing"}}}
	if diff := cmp.Diff(want, res.Blocked); diff != "" {
		t.Fatalf("Blocked mismatch (-want +got):\n%s", diff)
	}

	// Without A in the batch, B is blocked.
	if adm := r.CheckAdmission("B", nil, ScopeLocal); adm.Decision != Blocked {
		t.Fatalf("expected B alone to be blocked")
	}
}

func TestDescribeDependencies(t *testing.T) {
	g := graph.Build([]graph.Component{
		{ID: "a/a.php", Name: "Alpha"},
		{ID: "n/n.php", Name: "Net", Provides: "svc"},
		{ID: "c/c.php", Depends: "Alpha, svc, ghost"},
	})
	r := NewDefault(g, ActiveSets{Local: sets.New("a/a.php"), Network: sets.New("n/n.php")})

	want := []Requirement{
		{Capability: "a/a.php", Providers: []Provider{{ID: "a/a.php", Name: "Alpha"}}, State: RequirementUnsatisfiedNetwork},
		{Capability: "ghost", State: RequirementUnsatisfied},
		{Capability: "svc", Providers: []Provider{{ID: "n/n.php", Name: "Net"}}, State: RequirementSatisfied},
	}
	if diff := cmp.Diff(want, r.DescribeDependencies("c/c.php")); diff != "" {
		t.Fatalf("DescribeDependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScope(t *testing.T) {
	for raw, want := range map[string]Scope{"": ScopeLocal, "site": ScopeLocal, "Local": ScopeLocal, "network": ScopeNetwork} {
		got, err := ParseScope(raw)
		if err != nil || got != want {
			t.Fatalf("ParseScope(%q) = (%q, %v), want %q", raw, got, err, want)
		}
	}
	if _, err := ParseScope("galaxy"); !errors.Is(err, ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope, got %v", err)
	}
}

func TestDecisionString(t *testing.T) {
	if Pending.String() != "Pending" || Admitted.String() != "Admitted" || Blocked.String() != "Blocked" {
		t.Fatalf("unexpected decision names")
	}
	if Decision(42).String() != "Unknown" {
		t.Fatalf("expected Unknown for out-of-range decision")
	}
}
