package resolve

import (
	"context"

	"github.com/pkg/errors"
)

// SolveParameters holds the inputs to a single Resolver run. Mirroring
// a typical SolveParameters struct, only Root and Repository are required; the
// rest tune tracing and cancellation.
type SolveParameters struct {
	// Root is the project whose direct (and dev-direct) dependencies seed
	// the Graph at level 1.
	Root *RootDependency

	// Repository supplies releases for any Dependency that doesn't carry
	// its own Source link (the common index-lookup case). Callers that
	// need per-name repository selection (index vs. VCS vs. local path)
	// should pass an aggregate Repository implementing that fallback.
	Repository Repository

	// Environment is the fixed marker-evaluation snapshot captured once at
	// the start of the run.
	Environment Environment

	// Cancel, if non-nil, is checked between mutation steps; a closed
	// channel aborts the run with ErrCancelled.
	Cancel <-chan struct{}

	// Trace receives progress events. A nil Trace silences logging.
	Trace *Trace
}

// Resolver runs the backtracking search over a Graph
// seeded by SolveParameters.Root.
type Resolver struct {
	params  SolveParameters
	graph   *Graph
	mutator *defaultMutator
	history []*frame
	trace   *Trace
}

// frame records one applied (Dependency, Release) decision: everything the
// Resolver needs to undo it exactly, per the backtracking invariant that
// Graph state after undoing level L equals its state before L began.
type frame struct {
	dep     *Dependency
	release Release
	level   int

	// newNodes are canonical names created while applying this frame, to
	// be removed outright on revert if nothing else still requires them.
	newNodes []string
	// attached are canonical names this frame's dep attached a Group to
	// (a superset of newNodes), to be Detached on revert.
	attached []string
}

// NewResolver prepares a Resolver for params. It does not itself fetch
// anything; the first network or repository call happens inside Solve.
func NewResolver(params SolveParameters) *Resolver {
	r := &Resolver{params: params, trace: params.Trace}
	if r.trace == nil {
		r.trace = NewTrace(nil)
	}
	r.graph = NewGraph(params.Root)
	r.mutator = NewMutator(r.releasesFor).(*defaultMutator)
	return r
}

// Solve runs the backtracking search to completion, returning the solved
// Graph or a *ConflictError (via resolve's conflict analyzer) if no
// satisfying assignment exists. ctx is passed to GetDependencies calls;
// release listings are fetched with context.Background(). ErrCancelled is
// returned if params.Cancel fires first.
func (r *Resolver) Solve(ctx context.Context) (*Graph, error) {
	for _, d := range r.params.Root.AllDirect() {
		r.graph.Add(d)
		// Direct requirements are attached before any release listing is
		// known, so their candidate sets are computed here.
		versions := versionsOf(r.releasesFor(d))
		for _, g := range d.Constraint.EnabledGroups() {
			g.recompute(versions)
		}
	}

	for {
		if r.cancelled() {
			return nil, ErrCancelled
		}

		if r.allApplied() {
			r.trace.done(len(r.graph.All()))
			return r.graph, nil
		}

		level := len(r.history) + 1
		dep, release, ok := r.mutator.Mutate(r.graph, level)
		if !ok {
			if !r.backtrack(ctx) {
				return nil, r.conflictError()
			}
			continue
		}

		r.trace.attempt(level, dep.Canonical, release.Version.String())

		f, err := r.apply(ctx, dep, release, level)
		if err != nil {
			r.mutator.MarkTried(level, dep.Canonical, release.Version.String())
			r.trace.rejected(level, dep.Canonical, release.Version.String(), err.Error())
			continue
		}

		dep.Applied = true
		dep.SetChosen(release)
		dep.Level = level
		r.history = append(r.history, f)
		r.trace.applied(level, dep.Canonical, release.Version.String())
	}
}

func (r *Resolver) cancelled() bool {
	if r.params.Cancel == nil {
		return false
	}
	select {
	case <-r.params.Cancel:
		return true
	default:
		return false
	}
}

func (r *Resolver) allApplied() bool {
	for _, d := range r.graph.All() {
		if !d.Applied {
			return false
		}
	}
	return true
}

// releasesFor returns dep's candidate releases, descending by version, used
// by the Mutator to choose what to try next.
func (r *Resolver) releasesFor(dep *Dependency) []Release {
	repo := dep.Repository
	if repo == nil {
		repo = r.params.Repository
	}
	if repo == nil {
		return nil
	}
	releases, err := repo.ListReleases(context.Background(), dep.Name)
	if err != nil {
		return nil
	}
	return releases
}

// apply fetches release's declared dependencies and merges them into the
// Graph as Groups attached by dep. On conflict, every partial attachment it
// made is reverted before returning the error, so a failed attempt never
// leaves residue for the next candidate to trip over.
func (r *Resolver) apply(ctx context.Context, dep *Dependency, release Release, level int) (*frame, error) {
	repo := dep.Repository
	if repo == nil {
		repo = r.params.Repository
	}
	declared, err := repo.GetDependencies(ctx, release)
	if err != nil {
		return nil, NewRepoError(repo.Name(), dep.Name, release.Version.String(), err)
	}

	f := &frame{dep: dep, release: release, level: level}
	requester := Requester(dep.Canonical)

	for _, decl := range declared {
		if decl.Optional {
			continue
		}
		include, err := EvaluateMarker(decl.Marker, r.params.Environment)
		if err != nil {
			r.revertFrame(f)
			return nil, err
		}
		if !include {
			continue
		}

		canon := CanonicalName(decl.Name)
		child := r.graph.GetByName(canon)
		isNew := child == nil
		if isNew {
			childRepo := r.params.Repository
			child = NewDependency(decl.Name, childRepo)
			r.graph.Add(child)
			f.newNodes = append(f.newNodes, canon)
		}

		versions := versionsOf(r.releasesFor(child))
		child.Constraint.attachRange(requester, decl.Range, versions)
		f.attached = append(f.attached, canon)
		child.ActivatedBy[requester] = struct{}{}

		// attachRange's own return only reports whether this dep's new
		// Group is individually non-empty; the conflict that actually
		// matters is the child's combined range across every requester,
		// including ones already Applied before dep was tried (the
		// Diamond case: another branch already chose a version of child
		// that this attach's range now excludes). Conflict checks that
		// combined state, so it must be consulted instead of (not beside)
		// the per-Group result.
		if child.Constraint.Conflict() {
			r.revertFrame(f)
			return nil, errors.Errorf("%s requires %s %s, which has no satisfying release", dep.Name, decl.Name, decl.Range.String())
		}
	}

	return f, nil
}

func versionsOf(releases []Release) []Version {
	out := make([]Version, len(releases))
	for i, rel := range releases {
		out[i] = rel.Version
	}
	return out
}

// revertFrame undoes everything apply or a previously-applied frame did to
// the Graph: detaching the Groups it attached, and removing any node it
// created that no longer has a remaining requester.
func (r *Resolver) revertFrame(f *frame) {
	requester := Requester(f.dep.Canonical)
	for _, canon := range f.attached {
		child := r.graph.GetByName(canon)
		if child == nil {
			continue
		}
		child.Constraint.Detach(requester)
		delete(child.ActivatedBy, requester)
	}
	for _, canon := range f.newNodes {
		child := r.graph.GetByName(canon)
		if child != nil && child.Constraint.Empty() {
			r.graph.Remove(canon)
		}
	}
}
