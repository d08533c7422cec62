package resolve

import "sort"

// Mutator chooses the next (dependency, candidate version) pair to try at
// level, the depth the Resolver is currently deciding (len(history)+1).
// Returning ok=false signals "no unexplored decision at this level" and the
// Resolver must backtrack.
type Mutator interface {
	Mutate(g *Graph, level int) (dep *Dependency, release Release, ok bool)
}

// defaultMutator implements a most-constrained
// variable first, then latest-compatible-version first, skipping versions
// already tried and rejected at the current level.
type defaultMutator struct {
	// tried maps canonical name -> level -> set of version strings already
	// rejected at that level. Per the backtrack procedure, entries for
	// levels below the level being backtracked past are retained.
	tried map[string]map[int]map[string]struct{}

	// releases supplies the ordered candidate releases for a
	// dependency, keyed by canonical name, so the mutator can pick the
	// highest untried one without re-querying the repository.
	releases func(dep *Dependency) []Release
}

// NewMutator returns the default Mutator. releases must return a
// dependency's candidate releases in descending version order.
func NewMutator(releases func(dep *Dependency) []Release) Mutator {
	return &defaultMutator{
		tried:    make(map[string]map[int]map[string]struct{}),
		releases: releases,
	}
}

func (m *defaultMutator) Mutate(g *Graph, level int) (*Dependency, Release, bool) {
	candidates := m.unappliedByConstraintSize(g)
	for _, dep := range candidates {
		releases := m.releases(dep)
		for _, rel := range releases {
			if m.isTried(level, dep.Canonical, rel.Version.String()) {
				continue
			}
			if !dep.Constraint.EffectiveRange().Contains(rel.Version, dep.Constraint.EffectiveRange().IncludesPrerelease()) {
				continue
			}
			return dep, rel, true
		}
	}
	return nil, Release{}, false
}

// unappliedByConstraintSize returns every unapplied node sorted by
// ascending candidate-set size (most-constrained-variable first), with a
// deterministic name tie-break.
func (m *defaultMutator) unappliedByConstraintSize(g *Graph) []*Dependency {
	var out []*Dependency
	for _, d := range g.All() {
		if !d.Applied {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := len(out[i].Constraint.EnabledGroups()), len(out[j].Constraint.EnabledGroups())
		ni := m.candidateCount(out[i])
		nj := m.candidateCount(out[j])
		if ni != nj {
			return ni < nj
		}
		if ci != cj {
			return ci > cj
		}
		return out[i].Canonical < out[j].Canonical
	})
	return out
}

func (m *defaultMutator) candidateCount(dep *Dependency) int {
	n := 0
	for _, rel := range m.releases(dep) {
		if dep.Constraint.EffectiveRange().Contains(rel.Version, true) {
			n++
		}
	}
	return n
}

// MarkTried records that (level, canonical, version) was attempted and
// rejected, so the Mutator never offers it again at that level.
func (m *defaultMutator) MarkTried(level int, canonical, version string) {
	byLevel, ok := m.tried[canonical]
	if !ok {
		byLevel = make(map[int]map[string]struct{})
		m.tried[canonical] = byLevel
	}
	set, ok := byLevel[level]
	if !ok {
		set = make(map[string]struct{})
		byLevel[level] = set
	}
	set[version] = struct{}{}
}

func (m *defaultMutator) isTried(level int, canonical, version string) bool {
	byLevel, ok := m.tried[canonical]
	if !ok {
		return false
	}
	set, ok := byLevel[level]
	if !ok {
		return false
	}
	_, tried := set[version]
	return tried
}

// ForgetLevel clears the tried-set recorded at exactly level, per the backtrack
// backtrack procedure ("clear their tried sets only when backtracking past
// the level that recorded them").
func (m *defaultMutator) ForgetLevel(level int) {
	for _, byLevel := range m.tried {
		delete(byLevel, level)
	}
}
