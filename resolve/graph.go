package resolve

import (
	"github.com/armon/go-radix"
)

// Graph is a DAG of Dependency nodes keyed by canonical name. At most one
// node exists per canonical name; the root is always
// at level 0.
type Graph struct {
	root *RootDependency
	nodes map[string]*Dependency
	names *radix.Tree // canonical name -> canonical name, for prefix lookups
}

// NewGraph creates an empty Graph rooted at root.
func NewGraph(root *RootDependency) *Graph {
	return &Graph{
		root:  root,
		nodes: make(map[string]*Dependency),
		names: radix.New(),
	}
}

// Root returns the RootDependency this Graph was built from.
func (g *Graph) Root() *RootDependency { return g.root }

// Metainfo proxies the root project's metadata.
func (g *Graph) Metainfo() ProjectMetadata { return g.root.Metadata }

// Add inserts dep into the Graph, keyed by its canonical name. It is a
// no-op if a node with that canonical name already exists.
func (g *Graph) Add(dep *Dependency) {
	if _, exists := g.nodes[dep.Canonical]; exists {
		return
	}
	g.nodes[dep.Canonical] = dep
	g.names.Insert(dep.Canonical, dep.Canonical)
}

// Remove deletes the node for canonical name name, if present.
func (g *Graph) Remove(canonical string) {
	if _, exists := g.nodes[canonical]; !exists {
		return
	}
	delete(g.nodes, canonical)
	g.names.Delete(canonical)
}

// GetByName returns the node for a canonical name, or nil if none exists.
func (g *Graph) GetByName(canonical string) *Dependency {
	return g.nodes[canonical]
}

// LongestPrefix finds the node whose canonical name is the longest prefix
// of name (itself canonicalized first), mirroring the import-path-to-
// the same project-root resolution a dependency solver performs with the same
// radix-tree structure.
func (g *Graph) LongestPrefix(name string) (*Dependency, bool) {
	canon := CanonicalName(name)
	k, _, ok := g.names.LongestPrefix(canon)
	if !ok {
		return nil, false
	}
	return g.nodes[k], true
}

// All returns every node currently in the Graph, in no particular order.
func (g *Graph) All() []*Dependency {
	out := make([]*Dependency, 0, len(g.nodes))
	for _, d := range g.nodes {
		out = append(out, d)
	}
	return out
}

// Conflict returns the Dependency whose Constraint has an empty effective
// range, if any such node exists; nil otherwise.
func (g *Graph) Conflict() *Dependency {
	for _, d := range g.nodes {
		if d.Constraint.Conflict() {
			return d
		}
	}
	return nil
}

// ConflictAt returns the Dependency at or above minLevel whose Constraint
// has an empty effective range, preferring the shallowest such node. The
// Resolver uses this to find the most actionable place to backtrack from.
func (g *Graph) ConflictAt(minLevel int) *Dependency {
	var best *Dependency
	for _, d := range g.nodes {
		if d.Level < minLevel {
			continue
		}
		if !d.Constraint.Conflict() {
			continue
		}
		if best == nil || d.Level < best.Level {
			best = d
		}
	}
	return best
}

// RemoveUnreachable removes every node that is not reachable from the root
// through Applied parent edges. It returns the
// canonical names that were removed.
func (g *Graph) RemoveUnreachable() []string {
	reachable := make(map[string]struct{})
	var visit func(canon string)
	visit = func(canon string) {
		if _, seen := reachable[canon]; seen {
			return
		}
		reachable[canon] = struct{}{}
		d := g.nodes[canon]
		if d == nil || !d.Applied || !d.HasChosen() {
			return
		}
		for _, dep := range d.Chosen.Dependencies {
			visit(CanonicalName(dep.Name))
		}
	}
	for _, d := range g.root.AllDirect() {
		visit(d.Canonical)
	}

	var removed []string
	for canon := range g.nodes {
		if _, ok := reachable[canon]; !ok {
			removed = append(removed, canon)
		}
	}
	for _, canon := range removed {
		g.Remove(canon)
	}
	return removed
}
