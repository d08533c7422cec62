package repository

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/dephell-go/dephell/resolve"
)

// AggregateRepository tries each member Repository in order. ListReleases
// returns the first non-empty, error-free listing, falling through to the
// next member on an error or an empty listing; GetDependencies returns the
// first error-free answer, even an empty one. This is the common case for a
// Dependency with no explicit Source link: try the project's configured
// indexes in priority order.
//
// Uses a multi-source dispatch pattern.
type AggregateRepository struct {
	name    string
	members []resolve.Repository
}

// NewAggregateRepository returns a Repository that tries members in order.
func NewAggregateRepository(name string, members ...resolve.Repository) *AggregateRepository {
	return &AggregateRepository{name: name, members: members}
}

func (r *AggregateRepository) Name() string { return r.name }

func (r *AggregateRepository) ListReleases(ctx context.Context, name string) ([]resolve.Release, error) {
	var errs *multierror.Error
	for _, member := range r.members {
		releases, err := member.ListReleases(ctx, name)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if len(releases) > 0 {
			return releases, nil
		}
	}
	if errs != nil {
		return nil, resolve.NewRepoError(r.name, name, "", errs)
	}
	return []resolve.Release{}, nil
}

func (r *AggregateRepository) GetDependencies(ctx context.Context, release resolve.Release) ([]resolve.DeclaredDependency, error) {
	var errs *multierror.Error
	for _, member := range r.members {
		deps, err := member.GetDependencies(ctx, release)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		return deps, nil
	}
	if errs != nil {
		return nil, resolve.NewRepoError(r.name, release.Name, release.Version.String(), errs)
	}
	return nil, resolve.NewRepoError(r.name, release.Name, release.Version.String(), errNoMembers)
}

var errNoMembers = aggregateError("no member repositories configured")

type aggregateError string

func (e aggregateError) Error() string { return string(e) }
