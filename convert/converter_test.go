package convert

import (
	"context"
	"testing"

	"github.com/dephell-go/dephell/resolve"
)

// stubConverter is a minimal Converter whose Loads/Dumps are fixed in
// advance, for exercising Convert's lock-boundary branching without a real
// text format.
type stubConverter struct {
	lock  bool
	root  *resolve.RootDependency
	dumps func([]resolve.Requirement, resolve.ProjectMetadata, string) (string, error)
}

func (s *stubConverter) Lock() bool { return s.lock }

func (s *stubConverter) Loads(text string) (*resolve.RootDependency, error) {
	return s.root, nil
}

func (s *stubConverter) Dumps(reqs []resolve.Requirement, project resolve.ProjectMetadata, prior string) (string, error) {
	if s.dumps != nil {
		return s.dumps(reqs, project, prior)
	}
	return "", nil
}

func lockedDep(t *testing.T, name, version string, dev bool) *resolve.Dependency {
	t.Helper()
	v, err := resolve.ParseVersion(version)
	if err != nil {
		t.Fatal(err)
	}
	d := resolve.NewDependency(name, nil)
	d.IsDev = dev
	d.SetChosen(resolve.Release{Name: name, Version: v})
	return d
}

func rangedDep(t *testing.T, name, rangeText string, dev bool) *resolve.Dependency {
	t.Helper()
	d := resolve.NewDependency(name, nil)
	d.IsDev = dev
	if _, err := d.Constraint.Attach("root", rangeText, nil); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestConvertLockToLockTranscribesPins(t *testing.T) {
	root := &resolve.RootDependency{Direct: []*resolve.Dependency{lockedDep(t, "requests", "2.31.0", false)}}
	src := &stubConverter{lock: true, root: root}
	dst := &stubConverter{lock: true}

	reqs, _, err := Convert(context.Background(), src, "", dst, ScopeProject, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}
	if got := reqs[0].Version.String(); got != "2.31.0" {
		t.Errorf("expected the pinned version to transcribe directly, got %q", got)
	}
}

func TestConvertLockToManifestTurnsPinsIntoEqualityRanges(t *testing.T) {
	root := &resolve.RootDependency{Direct: []*resolve.Dependency{lockedDep(t, "requests", "2.31.0", false)}}
	src := &stubConverter{lock: true, root: root}
	dst := &stubConverter{lock: false}

	reqs, _, err := Convert(context.Background(), src, "", dst, ScopeProject, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := reqs[0].Range.String(); got != "==2.31.0" {
		t.Errorf("expected the pin to become an == range, got %q", got)
	}
}

func TestConvertManifestToManifestCarriesRangeAsIs(t *testing.T) {
	root := &resolve.RootDependency{Direct: []*resolve.Dependency{rangedDep(t, "requests", ">=2.0,<3.0", false)}}
	src := &stubConverter{lock: false, root: root}
	dst := &stubConverter{lock: false}

	reqs, _, err := Convert(context.Background(), src, "", dst, ScopeProject, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := reqs[0].Range.String(); got != ">=2.0,<3.0" {
		t.Errorf("expected the declared range to pass through unresolved, got %q", got)
	}
}

func TestConvertManifestToLockInvokesResolver(t *testing.T) {
	root := &resolve.RootDependency{Direct: []*resolve.Dependency{rangedDep(t, "requests", ">=2.0", false)}}
	src := &stubConverter{lock: false, root: root}
	dst := &stubConverter{lock: true}

	called := false
	solve := func(ctx context.Context, root *resolve.RootDependency) (*resolve.Graph, error) {
		called = true
		g := resolve.NewGraph(root)
		d := root.Direct[0]
		d.Applied = true
		version, _ := resolve.ParseVersion("2.31.0")
		d.SetChosen(resolve.Release{Name: d.Name, Version: version})
		g.Add(d)
		return g, nil
	}

	reqs, _, err := Convert(context.Background(), src, "", dst, ScopeProject, solve)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !called {
		t.Fatal("expected the resolver to be invoked for a non-lock -> lock conversion")
	}
	if len(reqs) != 1 || reqs[0].Version.String() != "2.31.0" {
		t.Errorf("expected the resolved version in the output, got %+v", reqs)
	}
}

func TestConvertScopePackageDropsDevDirect(t *testing.T) {
	root := &resolve.RootDependency{
		Direct:    []*resolve.Dependency{rangedDep(t, "requests", ">=2.0", false)},
		DevDirect: []*resolve.Dependency{rangedDep(t, "pytest", ">=7.0", true)},
	}
	src := &stubConverter{lock: false, root: root}
	dst := &stubConverter{lock: false}

	reqs, _, err := Convert(context.Background(), src, "", dst, ScopePackage, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("expected dev dependencies to be dropped under ScopePackage, got %d: %+v", len(reqs), reqs)
	}
	if reqs[0].Name != "requests" {
		t.Errorf("expected the remaining requirement to be requests, got %q", reqs[0].Name)
	}
}

func TestConvertScopeProjectKeepsDevDirect(t *testing.T) {
	root := &resolve.RootDependency{
		Direct:    []*resolve.Dependency{rangedDep(t, "requests", ">=2.0", false)},
		DevDirect: []*resolve.Dependency{rangedDep(t, "pytest", ">=7.0", true)},
	}
	src := &stubConverter{lock: false, root: root}
	dst := &stubConverter{lock: false}

	reqs, _, err := Convert(context.Background(), src, "", dst, ScopeProject, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected both main and dev dependencies under ScopeProject, got %d: %+v", len(reqs), reqs)
	}
}

func TestIOErrorUnwraps(t *testing.T) {
	cause := errTestCause("disk is on fire")
	err := NewIOError("/tmp/x", "load", cause)
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the wrapped cause")
	}
	if err.Error() == "" {
		t.Error("expected a non-empty error message")
	}
}

type errTestCause string

func (e errTestCause) Error() string { return string(e) }
