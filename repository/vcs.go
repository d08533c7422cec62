package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	vcslib "github.com/Masterminds/vcs"

	"github.com/dephell-go/dephell/resolve"
)

// VCSKind names the version-control system backing a VCSRepository,
// mirroring the Kind enum resolve.SourceLink already carries.
type VCSKind int

const (
	VCSGit VCSKind = iota
	VCSMercurial
	VCSSubversion
	VCSBazaar
)

// VCSRepository wraps a single VCS remote and presents it as a
// resolve.Repository that always yields exactly one synthetic release for
// the requested ref, never a list to choose among — the caller already
// picked the ref (a branch, tag, or commit) when it declared the
// dependency. The release returned is the resolve.Release embedded in a
// resolve.GitRelease; its Ref and Commit fields are not returned.
//
// Wraps github.com/Masterminds/vcs
// (vcs_repo.go): the clone/fetch/checkout dance is the same, re-pointed at
// this spec's single-synthetic-release model instead of gps's
// ProjectAnalyzer-driven manifest discovery.
type VCSRepository struct {
	kind     VCSKind
	remote   string
	ref      string
	cacheDir string

	mu     sync.Mutex
	cloned bool
}

// NewVCSRepository returns a Repository for one (remote, ref) pair, cloned
// lazily into a subdirectory of cacheDir on first use.
func NewVCSRepository(kind VCSKind, remote, ref, cacheDir string) *VCSRepository {
	return &VCSRepository{kind: kind, remote: remote, ref: ref, cacheDir: cacheDir}
}

func (r *VCSRepository) Name() string { return r.remote }

func (r *VCSRepository) localPath() string {
	return filepath.Join(r.cacheDir, sanitizeRemote(r.remote+"@"+r.ref))
}

func (r *VCSRepository) repo() (vcslib.Repo, error) {
	local := r.localPath()
	switch r.kind {
	case VCSGit:
		return vcslib.NewGitRepo(r.remote, local)
	case VCSMercurial:
		return vcslib.NewHgRepo(r.remote, local)
	case VCSSubversion:
		return vcslib.NewSvnRepo(r.remote, local)
	case VCSBazaar:
		return vcslib.NewBzrRepo(r.remote, local)
	default:
		return nil, resolve.NewRepoError(r.remote, "", r.ref, errUnknownVCSKind)
	}
}

var errUnknownVCSKind = vcsKindError("unrecognized VCS kind")

type vcsKindError string

func (e vcsKindError) Error() string { return string(e) }

// ensureClone clones the remote on first use and fetches afterward, so a
// long-running resolver picks up new refs pushed mid-run.
func (r *VCSRepository) ensureClone(repo vcslib.Repo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cloned {
		return repo.Update()
	}
	if repo.CheckLocal() {
		r.cloned = true
		return repo.Update()
	}
	if err := os.MkdirAll(filepath.Dir(repo.LocalPath()), 0o755); err != nil {
		return err
	}
	if err := repo.Get(); err != nil {
		return err
	}
	r.cloned = true
	return nil
}

// ListReleases returns the single synthetic release for the pinned ref. ctx
// is accepted for interface conformance; the underlying VCS client runs its
// commands synchronously and does not support per-call cancellation.
func (r *VCSRepository) ListReleases(ctx context.Context, name string) ([]resolve.Release, error) {
	repo, err := r.repo()
	if err != nil {
		return nil, resolve.NewRepoError(r.Name(), name, r.ref, err)
	}
	if err := r.ensureClone(repo); err != nil {
		return nil, resolve.NewRepoError(r.Name(), name, r.ref, err)
	}
	if err := repo.UpdateVersion(r.ref); err != nil {
		return nil, resolve.NewRepoError(r.Name(), name, r.ref, err)
	}
	commit, err := repo.Version()
	if err != nil {
		return nil, resolve.NewRepoError(r.Name(), name, r.ref, err)
	}

	version := pseudoVersion(r.ref, commit)
	release := resolve.GitRelease{
		Release: resolve.Release{Name: name, Version: version, Origin: r.remote},
		Ref:     r.ref,
		Commit:  commit,
	}
	return []resolve.Release{release.Release}, nil
}

// GetDependencies reads the declared dependencies out of the checked-out
// working tree. The concrete manifest format (Pipfile, requirements.txt,
// ...) is a convert.Converter's job; VCSRepository only guarantees the
// checkout exists at the right commit before the caller reads it, so this
// returns no dependencies on its own — callers that need manifest-derived
// sub-dependencies read localPath() through a Converter after ListReleases.
func (r *VCSRepository) GetDependencies(ctx context.Context, release resolve.Release) ([]resolve.DeclaredDependency, error) {
	return nil, nil
}

// LocalPath exposes the clone directory so a Converter can read the
// checked-out manifest after ListReleases has run.
func (r *VCSRepository) LocalPath() string { return r.localPath() }

func sanitizeRemote(remote string) string {
	out := make([]byte, 0, len(remote))
	for i := 0; i < len(remote); i++ {
		c := remote[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

// pseudoVersion builds a Version that sorts predictably for a VCS ref. If
// the ref itself parses as a version (a tag like "1.2.3" does; a
// "v"-prefixed tag such as "v1.2.3" does not),
// that's used directly; otherwise (a branch name or bare commit) a local
// segment carrying the commit keeps distinct refs from ever comparing
// equal.
func pseudoVersion(ref, commit string) resolve.Version {
	if v, err := resolve.ParseVersion(ref); err == nil {
		return v
	}
	v, _ := resolve.ParseVersion("0.0.0+" + sanitizeRemote(ref+"-"+commit))
	return v
}
