package repository

import (
	"context"

	"github.com/dephell-go/dephell/resolve"
)

// LocalRepository serves a single synthetic Release pointing at a
// filesystem path or a local archive file, for dependencies declared with a
// path= or file= source link instead of an index lookup.
//
// Local-path handling: a local
// source is trusted as-is, with no version negotiation, since the caller
// chose the exact path.
type LocalRepository struct {
	path       string
	editable   bool
	dependencies []resolve.DeclaredDependency
}

// NewLocalRepository returns a Repository for a fixed local path. deps are
// the sub-dependencies the caller already extracted from the local
// project's own manifest (a Converter's job, not this Repository's).
func NewLocalRepository(path string, editable bool, deps []resolve.DeclaredDependency) *LocalRepository {
	return &LocalRepository{path: path, editable: editable, dependencies: deps}
}

func (r *LocalRepository) Name() string { return "local:" + r.path }

func (r *LocalRepository) ListReleases(ctx context.Context, name string) ([]resolve.Release, error) {
	version, _ := resolve.ParseVersion("0.0.0+local")
	return []resolve.Release{{
		Name:    name,
		Version: version,
		Origin:  r.path,
	}}, nil
}

func (r *LocalRepository) GetDependencies(ctx context.Context, release resolve.Release) ([]resolve.DeclaredDependency, error) {
	return r.dependencies, nil
}

// Path returns the local filesystem path this Repository was built from.
func (r *LocalRepository) Path() string { return r.path }

// Editable reports whether the dependency was declared with an editable
// (develop-mode) install, per Pipfile's "editable" field.
func (r *LocalRepository) Editable() bool { return r.editable }
