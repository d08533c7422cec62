package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/dephell-go/dephell/resolve"
)

type fakeMemberRepository struct {
	name     string
	releases []resolve.Release
	listErr  error
	deps     []resolve.DeclaredDependency
	depsErr  error
}

func (f *fakeMemberRepository) Name() string { return f.name }

func (f *fakeMemberRepository) ListReleases(ctx context.Context, name string) ([]resolve.Release, error) {
	return f.releases, f.listErr
}

func (f *fakeMemberRepository) GetDependencies(ctx context.Context, release resolve.Release) ([]resolve.DeclaredDependency, error) {
	return f.deps, f.depsErr
}

func TestAggregateRepositoryFallsThroughToNextMember(t *testing.T) {
	version, _ := resolve.ParseVersion("1.0.0")
	first := &fakeMemberRepository{name: "primary", listErr: errors.New("unreachable")}
	second := &fakeMemberRepository{name: "mirror", releases: []resolve.Release{{Name: "widget", Version: version}}}

	repo := NewAggregateRepository("agg", first, second)
	releases, err := repo.ListReleases(context.Background(), "widget")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(releases) != 1 || releases[0].Version.String() != "1.0.0" {
		t.Errorf("expected the fallback member's release, got %v", releases)
	}
}

func TestAggregateRepositorySkipsMembersWithEmptyResults(t *testing.T) {
	version, _ := resolve.ParseVersion("2.0.0")
	empty := &fakeMemberRepository{name: "empty"}
	populated := &fakeMemberRepository{name: "populated", releases: []resolve.Release{{Name: "widget", Version: version}}}

	repo := NewAggregateRepository("agg", empty, populated)
	releases, err := repo.ListReleases(context.Background(), "widget")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("expected the populated member's release to be used, got %v", releases)
	}
}

func TestAggregateRepositoryReturnsErrorWhenAllMembersFail(t *testing.T) {
	first := &fakeMemberRepository{name: "primary", listErr: errors.New("down")}
	second := &fakeMemberRepository{name: "mirror", listErr: errors.New("also down")}

	repo := NewAggregateRepository("agg", first, second)
	_, err := repo.ListReleases(context.Background(), "widget")
	if err == nil {
		t.Fatal("expected an error when every member fails")
	}
	if _, ok := err.(*resolve.RepoError); !ok {
		t.Errorf("expected *resolve.RepoError, got %T: %v", err, err)
	}
}

func TestAggregateRepositoryGetDependenciesUsesFirstSuccess(t *testing.T) {
	first := &fakeMemberRepository{name: "primary", depsErr: errors.New("missing")}
	second := &fakeMemberRepository{name: "mirror", deps: []resolve.DeclaredDependency{{Name: "six"}}}

	repo := NewAggregateRepository("agg", first, second)
	deps, err := repo.GetDependencies(context.Background(), resolve.Release{Name: "widget"})
	if err != nil {
		t.Fatalf("GetDependencies: %v", err)
	}
	if len(deps) != 1 || deps[0].Name != "six" {
		t.Errorf("expected the second member's dependency list, got %v", deps)
	}
}

func TestAggregateRepositoryWithNoMembersReturnsError(t *testing.T) {
	repo := NewAggregateRepository("agg")
	_, err := repo.GetDependencies(context.Background(), resolve.Release{Name: "widget"})
	if err == nil {
		t.Fatal("expected an error when no member repositories are configured")
	}
}
