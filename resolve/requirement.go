package resolve

import "sort"

// Requirement is the flat, serializer-facing projection of one resolved
// Dependency: everything a Converter needs to write it out, with no
// remaining reference to the Graph or Constraint it came from.
type Requirement struct {
	Name     string
	Canonical string
	// Range is the original declared range, used when Lock is false.
	Range RangeSpecifier
	// Version is the chosen release, used when Lock is true.
	Version Version
	Extras  []string
	Marker  string
	Source  *SourceLink
	Hashes  []string
	IsDev   bool
}

// RequirementsFromGraph walks every applied Dependency reachable from the
// root and flattens it into a Requirement. When lock is true,
// each Requirement pins the exact chosen Version and any known hashes;
// otherwise it carries the Dependency's effective declared range. Output is
// sorted by canonical name, case-insensitively, for deterministic dumps.
func RequirementsFromGraph(g *Graph, lock bool) []Requirement {
	var out []Requirement
	for _, d := range g.All() {
		if !d.Applied {
			continue
		}
		req := Requirement{
			Name:      d.Name,
			Canonical: d.Canonical,
			Extras:    d.Extras,
			Marker:    d.Marker,
			Source:    d.Source,
			IsDev:     d.IsDev,
		}
		if lock {
			if d.HasChosen() {
				req.Version = d.Chosen.Version
				req.Hashes = d.Chosen.Hashes
			}
		} else {
			req.Range = d.Constraint.EffectiveRange()
		}
		out = append(out, req)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Canonical < out[j].Canonical
	})
	return out
}
