package resolve

import "context"

// backtrack implements the backtrack procedure as an iterative walk down
// the history stack. For the top frame, it first looks for another
// untried candidate at the same level; only once that dependency's
// candidates are exhausted does it pop the frame for good, forget its
// tried-set, and continue unwinding into the frame below. It returns false
// once the stack empties without finding anywhere left to try, meaning the
// whole resolution has failed.
func (r *Resolver) backtrack(ctx context.Context) bool {
	for len(r.history) > 0 {
		top := r.history[len(r.history)-1]
		r.revertFrame(top)
		top.dep.Applied = false
		top.dep.ClearChosen()
		// The release just reverted is not offered again at this level.
		r.mutator.MarkTried(top.level, top.dep.Canonical, top.release.Version.String())

		if f, release, ok := r.nextCandidate(ctx, top.dep, top.level); ok {
			top.dep.Applied = true
			top.dep.SetChosen(release)
			r.history[len(r.history)-1] = f
			r.trace.applied(top.level, top.dep.Canonical, release.Version.String())
			return true
		}

		r.history = r.history[:len(r.history)-1]
		r.mutator.ForgetLevel(top.level)
		top.dep.Level = 0
		r.trace.backtrack(top.level, len(r.history), top.dep.Canonical)
	}
	return false
}

// nextCandidate finds the next untried, range-satisfying release for dep at
// level, applying it speculatively; a release whose sub-dependencies
// conflict is marked tried and skipped, same as a fresh Mutate/apply pair
// in the forward direction.
func (r *Resolver) nextCandidate(ctx context.Context, dep *Dependency, level int) (*frame, Release, bool) {
	eff := dep.Constraint.EffectiveRange()
	allowPre := eff.IncludesPrerelease()
	for _, rel := range r.releasesFor(dep) {
		version := rel.Version.String()
		if r.mutator.isTried(level, dep.Canonical, version) {
			continue
		}
		if !eff.Contains(rel.Version, allowPre) {
			continue
		}
		f, err := r.apply(ctx, dep, rel, level)
		if err != nil {
			r.mutator.MarkTried(level, dep.Canonical, version)
			r.trace.rejected(level, dep.Canonical, version, err.Error())
			continue
		}
		return f, rel, true
	}
	return nil, Release{}, false
}
