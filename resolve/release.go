package resolve

// DeclaredDependency is one sub-dependency a Release declares: a name, the
// range it requires, any extras it activates, and the marker expression
// gating it. It is unresolved — no Repository is wired to it yet; the
// Resolver attaches one when it turns this into a graph Dependency.
type DeclaredDependency struct {
	Name       string
	Range      RangeSpecifier
	Extras     []string
	Marker     string
	Optional   bool // true if this dependency is gated behind an extra
}

// Release is a concrete candidate: a name, a version, the dependencies it
// declares, and where it came from. Releases are immutable once fetched.
type Release struct {
	Name         string
	Version      Version
	Dependencies []DeclaredDependency
	Extras       []string
	Hashes       []string
	// Origin identifies where this release's artifact lives: an index URL,
	// a VCS remote + ref, or a local path, depending on which Repository
	// produced it.
	Origin string
}

// GitRelease is the synthetic, single Release a VCS repository produces for
// one ref: there is exactly one "version" (the ref itself, optionally
// paired with the resolved commit), not a list to choose among. The
// embedded Release's Version is a pseudo-version built from Ref by the
// owning VCS repository.
type GitRelease struct {
	Release
	Ref    string
	Commit string
}
