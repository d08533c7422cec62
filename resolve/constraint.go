package resolve

import (
	"strings"
)

// Requester identifies the Dependency that contributed a particular Group
// to a Constraint. It is the canonical name of that Dependency (the root
// project's canonical name for direct requirements).
type Requester string

// Group is a bundle of Specifiers attributed to a single requester, plus
// the set of candidate versions that currently satisfy the bundle. The
// candidate set is recomputed by Constraint whenever the bundle changes;
// Groups attached before the repository's releases are known (the root's
// direct requirements) are recomputed by the Resolver when Solve starts.
type Group struct {
	Requester  Requester
	Range      RangeSpecifier
	candidates []Version
	disabled   bool
}

// Matches reports whether version is admitted by this Group's range. Since
// a single Group only ever needs to know about its own explicit
// pre-release mentions (the "no stable match" half of the rule is a
// property of the candidate set, handled by Group.recompute), Matches
// uses Range.IncludesPrerelease as its allowPre signal.
func (g Group) Matches(version Version) bool {
	return g.Range.Contains(version, g.Range.IncludesPrerelease())
}

// Candidates returns the versions this Group currently admits, as of the
// last recompute.
func (g Group) Candidates() []Version { return g.candidates }

// Constraint is a mapping requester -> Group for one target package name.
// The effective range is the intersection across all enabled Groups.
type Constraint struct {
	// Name is the canonical name this Constraint governs.
	Name string

	groups map[Requester]*Group
	order  []Requester // insertion order, for deterministic iteration
}

// NewConstraint returns an empty Constraint for the given canonical name.
func NewConstraint(name string) *Constraint {
	return &Constraint{Name: name, groups: make(map[Requester]*Group)}
}

// Attach merges the parsed range into the Group belonging to requester,
// recomputes that Group's candidate set against repoVersions, and reports
// whether the requester's own Group is non-empty afterward.
//
// Per the Open Question resolution (DESIGN.md), a second Attach from the
// same requester intersects into the existing bundle rather than replacing
// it — "intersect-then-error", not "last-wins".
func (c *Constraint) Attach(requester Requester, specifierText string, repoVersions []Version) (ok bool, err error) {
	r, err := ParseRange(specifierText)
	if err != nil {
		return false, err
	}
	return c.attachRange(requester, r, repoVersions), nil
}

func (c *Constraint) attachRange(requester Requester, r RangeSpecifier, repoVersions []Version) bool {
	g, exists := c.groups[requester]
	if !exists {
		g = &Group{Requester: requester}
		c.groups[requester] = g
		c.order = append(c.order, requester)
	} else {
		r = g.Range.Intersect(r)
	}
	g.Range = r
	g.recompute(repoVersions)
	return len(g.candidates) > 0
}

func (g *Group) recompute(repoVersions []Version) {
	allowPre := g.Range.IncludesPrerelease()
	if !allowPre {
		// "or if the range has no stable match": if nothing stable
		// satisfies the range, widen to admit pre-releases too.
		hasStable := false
		for _, v := range repoVersions {
			if !v.IsPrerelease() && g.Range.Contains(v, false) {
				hasStable = true
				break
			}
		}
		if !hasStable {
			allowPre = true
		}
	}

	g.candidates = g.candidates[:0]
	for _, v := range repoVersions {
		if g.Range.Contains(v, allowPre) {
			g.candidates = append(g.candidates, v)
		}
	}
}

// Unapply disables requester's Group, retaining it so backtracking can
// re-enable it later. Unapply on a requester with no Group is a no-op.
func (c *Constraint) Unapply(requester Requester) {
	if g, ok := c.groups[requester]; ok {
		g.disabled = true
	}
}

// Apply re-enables a previously disabled Group.
func (c *Constraint) Apply(requester Requester) {
	if g, ok := c.groups[requester]; ok {
		g.disabled = false
	}
}

// Detach permanently removes requester's Group, e.g. when the requester
// itself has been removed from the Graph.
func (c *Constraint) Detach(requester Requester) {
	if _, ok := c.groups[requester]; !ok {
		return
	}
	delete(c.groups, requester)
	for i, r := range c.order {
		if r == requester {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Sources returns the names of all requesters currently contributing a
// Group, in insertion order.
func (c *Constraint) Sources() []Requester {
	out := make([]Requester, len(c.order))
	copy(out, c.order)
	return out
}

// EnabledGroups returns the Groups that are not currently disabled, in
// insertion order.
func (c *Constraint) EnabledGroups() []*Group {
	var out []*Group
	for _, r := range c.order {
		g := c.groups[r]
		if !g.disabled {
			out = append(out, g)
		}
	}
	return out
}

// Empty reports whether the Constraint has no requesters at all.
func (c *Constraint) Empty() bool { return len(c.order) == 0 }

// Filter returns the subset of releases whose version satisfies the
// intersection of all enabled Groups. Filter is monotone: disabling a
// Group can only grow the result, enabling one can only shrink it.
func (c *Constraint) Filter(releases []Version) []Version {
	enabled := c.EnabledGroups()
	if len(enabled) == 0 {
		out := make([]Version, len(releases))
		copy(out, releases)
		return out
	}

	var out []Version
	for _, v := range releases {
		ok := true
		for _, g := range enabled {
			if !g.Matches(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, v)
		}
	}
	return out
}

// EffectiveRange returns the intersection of every enabled Group's range.
func (c *Constraint) EffectiveRange() RangeSpecifier {
	enabled := c.EnabledGroups()
	if len(enabled) == 0 {
		return AnyRange()
	}
	eff := enabled[0].Range
	for _, g := range enabled[1:] {
		eff = eff.Intersect(g.Range)
	}
	return eff
}

// Conflict reports whether the effective range can be statically proven
// empty, or whether any enabled Group's own candidate set came up empty
// (the dynamic signal, which accounts for there being no repository
// release at all that satisfies the static range).
func (c *Constraint) Conflict() bool {
	enabled := c.EnabledGroups()
	if len(enabled) == 0 {
		return false
	}
	if c.EffectiveRange().IsEmpty() {
		return true
	}
	for _, g := range enabled {
		if len(g.candidates) == 0 {
			return true
		}
	}
	return false
}

// describeGroups renders each enabled Group's requester, range, and
// candidate versions for diagnostics.
func (c *Constraint) describeGroups() []string {
	var lines []string
	for _, g := range c.EnabledGroups() {
		lines = append(lines, strings.TrimSpace(
			string(g.Requester)+" wants "+g.Range.String()+" ("+fmtVersions(g.candidates)+")"))
	}
	return lines
}
