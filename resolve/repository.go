package resolve

import "context"

// Repository abstracts a source of Releases for one or more package names.
// Implementations live in the sibling repository package: an HTTP package
// index, a VCS clone, a local path/archive, or an aggregate fallback chain.
//
// Repository methods may suspend internally (network I/O) but must
// present a blocking, deterministic view to the Resolver: for the same
// inputs, ListReleases must return releases in the same order every call.
type Repository interface {
	// Name identifies this repository for diagnostics (conflict reports,
	// RepoError attribution).
	Name() string

	// ListReleases returns the known releases for name, in descending
	// version order, stable on ties. A name with no releases returns an
	// empty, non-nil slice and a nil error.
	ListReleases(ctx context.Context, name string) ([]Release, error)

	// GetDependencies returns the declared sub-dependencies of release.
	// It is lazy (may hit the network) and must be idempotent for a given
	// release.
	GetDependencies(ctx context.Context, release Release) ([]DeclaredDependency, error)
}
