package resolve

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type depSnapshot struct {
	Canonical string
	Applied   bool
	Chosen    string
	Sources   []string
}

func snapshotGraph(g *Graph) []depSnapshot {
	var out []depSnapshot
	for _, d := range g.All() {
		chosen := ""
		if d.HasChosen() {
			chosen = d.Chosen.Version.String()
		}
		srcs := make([]string, 0, len(d.Constraint.Sources()))
		for _, r := range d.Constraint.Sources() {
			srcs = append(srcs, string(r))
		}
		sort.Strings(srcs)
		out = append(out, depSnapshot{Canonical: d.Canonical, Applied: d.Applied, Chosen: chosen, Sources: srcs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

// TestBacktrackRestoresExactGraphState exercises the exact-undo invariant directly:
// after backtracking away from a level, Graph state must equal its state at
// the moment that level began, exactly.
func TestBacktrackRestoresExactGraphState(t *testing.T) {
	repo := newFakeRepository("fixture")
	// bar has exactly one release, whose foo requirement is satisfiable, so
	// apply succeeds. Once backtrack reverts bar@1.0.0 there is no other
	// candidate at level 1, so the frame is popped for good rather than
	// retried with a different version.
	repo.addRelease("bar", "1.0.0", dep("foo", ">=1.0.0"))
	repo.addRelease("foo", "1.0.0")

	barDep := directDependency("bar", "*")
	root := &RootDependency{Direct: []*Dependency{barDep}}
	resolver := NewResolver(SolveParameters{Root: root, Repository: repo})
	resolver.graph.Add(barDep)

	before := snapshotGraph(resolver.graph)

	releases := resolver.releasesFor(barDep)
	if len(releases) != 1 {
		t.Fatalf("expected exactly one bar release, got %d", len(releases))
	}

	f, err := resolver.apply(context.Background(), barDep, releases[0], 1)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	barDep.Applied = true
	barDep.SetChosen(f.release)
	barDep.Level = 1
	resolver.history = append(resolver.history, f)

	if len(resolver.graph.All()) != 2 {
		t.Fatalf("expected bar's apply to have created a foo node, got %d nodes", len(resolver.graph.All()))
	}

	if resolver.backtrack(context.Background()) {
		t.Fatal("expected backtrack to report exhaustion: bar has no other release to try")
	}

	after := snapshotGraph(resolver.graph)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("graph state after backtracking past level 1 does not match state before level 1 began (-before +after):\n%s", diff)
	}
}

func TestBacktrackRetriesSameLevelBeforePopping(t *testing.T) {
	// baz@2.0.0 is tried first (latest-first) and applies, but the only qux
	// it admits (1.5.0) depends on a package with no releases, so qux runs
	// out of candidates at level 2. Backtracking then retries baz within its
	// own level, moving on to baz@1.0.0, whose qux>=2.0.0 admits qux@2.5.0.
	repo := newFakeRepository("fixture")
	repo.addRelease("baz", "2.0.0", dep("qux", "<2.0.0"))
	repo.addRelease("baz", "1.0.0", dep("qux", ">=2.0.0"))
	repo.addRelease("qux", "2.5.0")
	repo.addRelease("qux", "1.5.0", dep("missing", ">=1.0.0"))

	root := &RootDependency{Direct: []*Dependency{directDependency("baz", "*")}}
	resolver := NewResolver(SolveParameters{Root: root, Repository: repo})

	graph, err := resolver.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	baz := graph.GetByName("baz")
	if got := baz.Chosen.Version.String(); got != "1.0.0" {
		t.Errorf("expected baz to settle on 1.0.0 after retrying within its own level, got %s", got)
	}
	qux := graph.GetByName("qux")
	if got := qux.Chosen.Version.String(); got != "2.5.0" {
		t.Errorf("expected qux to resolve to its latest release once baz@1.0.0 is chosen, got %s", got)
	}
}
