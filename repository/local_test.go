package repository

import (
	"context"
	"testing"

	"github.com/dephell-go/dephell/resolve"
)

func TestLocalRepositoryListReleasesReturnsOneSyntheticRelease(t *testing.T) {
	repo := NewLocalRepository("/srv/checkouts/widget", true, nil)

	releases, err := repo.ListReleases(context.Background(), "widget")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("expected exactly one synthetic release, got %d", len(releases))
	}
	if got := releases[0].Origin; got != "/srv/checkouts/widget" {
		t.Errorf("Origin = %q, want the local path", got)
	}
}

func TestLocalRepositoryGetDependenciesReturnsFixedList(t *testing.T) {
	want := []resolve.DeclaredDependency{{Name: "six"}, {Name: "typing-extensions"}}
	repo := NewLocalRepository("/srv/checkouts/widget", false, want)

	deps, err := repo.GetDependencies(context.Background(), resolve.Release{})
	if err != nil {
		t.Fatalf("GetDependencies: %v", err)
	}
	if len(deps) != len(want) {
		t.Fatalf("GetDependencies returned %d entries, want %d", len(deps), len(want))
	}
	for i := range want {
		if deps[i].Name != want[i].Name {
			t.Errorf("deps[%d].Name = %q, want %q", i, deps[i].Name, want[i].Name)
		}
	}
}

func TestLocalRepositoryAccessors(t *testing.T) {
	repo := NewLocalRepository("/srv/checkouts/widget", true, nil)
	if got := repo.Path(); got != "/srv/checkouts/widget" {
		t.Errorf("Path() = %q", got)
	}
	if !repo.Editable() {
		t.Error("expected Editable() to report true")
	}
	if got := repo.Name(); got != "local:/srv/checkouts/widget" {
		t.Errorf("Name() = %q", got)
	}
}
