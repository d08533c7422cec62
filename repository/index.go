// Package repository implements the resolve.Repository interface over the
// concrete places a release actually lives: an HTTP package index, a VCS
// checkout, a local path, and an aggregate fallback across several of the
// above.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/dephell-go/dephell/resolve"
)

// indexResponse is the JSON document an index package endpoint returns:
// every known release for one name, each carrying its declared
// dependencies pre-parsed as PEP 508-shaped strings (the "requires_dist"
// convention).
type indexResponse struct {
	Name     string `json:"name"`
	Releases []struct {
		Version      string   `json:"version"`
		RequiresDist []string `json:"requires_dist"`
		Yanked       bool     `json:"yanked"`
		Hashes       []string `json:"hashes"`
	} `json:"releases"`
}

// IndexRepository fetches releases from an HTTP package index. It
// deduplicates concurrent identical requests with singleflight and caches
// every successful response for the lifetime of the Repository, since a given
// (index, name) pair's release list does not change within one solve run.
//
// Uses a source-cache request-coalescing shape
// (source_manager.go, source_cache.go), re-expressed with the idiomatic Go
// library for that exact guarantee instead of hand-rolled
// future/channel bookkeeping.
type IndexRepository struct {
	baseURL string
	client  *http.Client

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]indexResponse
}

// NewIndexRepository returns a Repository backed by the index at baseURL
// (e.g. "https://pypi.org/pypi"); a package's releases are fetched from
// <baseURL>/<name>/json. A nil client is replaced by a new http.Client
// with a 30-second per-request timeout.
func NewIndexRepository(baseURL string, client *http.Client) *IndexRepository {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &IndexRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		cache:   make(map[string]indexResponse),
	}
}

func (r *IndexRepository) Name() string { return r.baseURL }

func (r *IndexRepository) fetch(ctx context.Context, name string) (indexResponse, error) {
	r.mu.RLock()
	if cached, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		u, err := url.Parse(r.baseURL + path.Clean("/"+name) + "/json")
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return indexResponse{Name: name}, nil
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("index returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
		}

		var parsed indexResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[name] = parsed
		r.mu.Unlock()
		return parsed, nil
	})
	if err != nil {
		return indexResponse{}, err
	}
	return v.(indexResponse), nil
}

func (r *IndexRepository) ListReleases(ctx context.Context, name string) ([]resolve.Release, error) {
	parsed, err := r.fetch(ctx, name)
	if err != nil {
		return nil, resolve.NewRepoError(r.Name(), name, "", err)
	}

	out := make([]resolve.Release, 0, len(parsed.Releases))
	for _, rel := range parsed.Releases {
		if rel.Yanked {
			continue
		}
		version, err := resolve.ParseVersion(rel.Version)
		if err != nil {
			continue
		}
		out = append(out, resolve.Release{
			Name:    name,
			Version: version,
			Hashes:  rel.Hashes,
			Origin:  r.baseURL,
		})
	}
	sortReleasesDescending(out)
	return out, nil
}

func (r *IndexRepository) GetDependencies(ctx context.Context, release resolve.Release) ([]resolve.DeclaredDependency, error) {
	parsed, err := r.fetch(ctx, release.Name)
	if err != nil {
		return nil, resolve.NewRepoError(r.Name(), release.Name, release.Version.String(), err)
	}
	for _, rel := range parsed.Releases {
		version, err := resolve.ParseVersion(rel.Version)
		if err != nil || !version.Equal(release.Version) {
			continue
		}
		out := make([]resolve.DeclaredDependency, 0, len(rel.RequiresDist))
		for _, line := range rel.RequiresDist {
			decl, err := resolve.ParseRequirementLine(line)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing requires_dist for %s@%s", release.Name, release.Version.String())
			}
			out = append(out, decl)
		}
		return out, nil
	}
	return nil, resolve.NewRepoError(r.Name(), release.Name, release.Version.String(), fmt.Errorf("release not found in index response"))
}

func sortReleasesDescending(releases []resolve.Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		return resolve.Compare(releases[i].Version, releases[j].Version) > 0
	})
}
