package resolve

// SourceLink describes an alternate place a Dependency's code comes from:
// a VCS URL + ref, a local filesystem path, or a direct archive/URL,
// instead of the default index lookup by name.
type SourceLink struct {
	Kind       SourceKind
	URL        string
	Ref        string // VCS ref (tag/branch/commit)
	Path       string // local path
	Subdir     string
	Editable   bool
}

// SourceKind enumerates the possible origins a Pipfile field
// list (vcs/path/file/uri) plus the default index lookup.
type SourceKind int

const (
	SourceIndex SourceKind = iota
	SourceVCS
	SourceLocalPath
	SourceArchive
)

// Dependency is a named node in the Graph: it carries the Constraint
// governing its target name, the Repository it resolves against, any
// extras it was requested with, its marker expression, and an optional
// source link overriding index lookup. Dependency persists across
// backtracks; only its chosen Release and Applied flag mutate during
// solving.
type Dependency struct {
	Name       string
	Canonical  string
	Constraint *Constraint
	Repository Repository
	Extras     []string
	Marker     string
	Source     *SourceLink

	// IsDev marks a development-only dependency (declared separately from
	// the main dependency set by formats that distinguish the two, e.g.
	// Pipfile's [dev-packages]).
	IsDev bool

	// Level is the backtracking depth at which this node was applied.
	Level int
	// Applied reports whether this Dependency's own sub-dependencies have
	// been added to the Graph.
	Applied bool
	// Chosen is the Release currently selected for this Dependency, or the
	// zero value if none has been chosen yet.
	Chosen Release
	hasChosen bool

	// ActivatedBy records the canonical names of parent Dependencies that
	// currently require this node (i.e. contributed a Group to its
	// Constraint). It mirrors Constraint.Sources but survives independent
	// of constraint internals for Graph bookkeeping.
	ActivatedBy map[Requester]struct{}
}

// NewDependency creates an unapplied Dependency for name, wired to repo.
func NewDependency(name string, repo Repository) *Dependency {
	canon := CanonicalName(name)
	return &Dependency{
		Name:        name,
		Canonical:   canon,
		Constraint:  NewConstraint(canon),
		Repository:  repo,
		ActivatedBy: make(map[Requester]struct{}),
	}
}

// SetChosen records the Release selected for this Dependency.
func (d *Dependency) SetChosen(r Release) {
	d.Chosen = r
	d.hasChosen = true
}

// ClearChosen forgets the selected Release, e.g. when backtracking past
// this node's level.
func (d *Dependency) ClearChosen() {
	d.Chosen = Release{}
	d.hasChosen = false
}

// HasChosen reports whether a Release has been selected.
func (d *Dependency) HasChosen() bool { return d.hasChosen }

// ProjectMetadata carries the information only the root project has: its
// own identity and publishing metadata, as opposed to a dependency's
// version constraints.
type ProjectMetadata struct {
	Name            string
	Version          string
	Authors         []string
	Description     string
	PythonVersion   string
	EntryPoints     map[string]string
	Readme          string
	License         string
	URL             string
}

// RootDependency is the special Dependency with no parent: it directly
// attaches the project's declared dependencies and carries project
// metadata. Converters produce a RootDependency from a loaded manifest.
type RootDependency struct {
	Metadata     ProjectMetadata
	Direct       []*Dependency
	DevDirect    []*Dependency
	Repositories []Repository
}

// AllDirect returns both the main and dev direct dependencies, main first.
func (r *RootDependency) AllDirect() []*Dependency {
	out := make([]*Dependency, 0, len(r.Direct)+len(r.DevDirect))
	out = append(out, r.Direct...)
	out = append(out, r.DevDirect...)
	return out
}
