package convert

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/dephell-go/dephell/resolve"
)

// rawLock mirrors the TOML-based lockfile: an array of package tables,
// each pinning an exact version plus hashes. Same raw-struct +
// toml.Marshal/Unmarshal shape as rawManifest, one array-of-tables instead
// of a flat dependency list, matching how a lock file
// nests `[[package]]`.
type rawLock struct {
	LockVersion int              `toml:"lock-version"`
	Package     []rawLockedEntry `toml:"package"`
}

type rawLockedEntry struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Hashes  []string `toml:"hashes,omitempty"`
	Extras  []string `toml:"extras,omitempty"`
	Marker  string   `toml:"marker,omitempty"`
	Dev     bool     `toml:"dev,omitempty"`
	Source  string   `toml:"source,omitempty"`
}

const lockVersion = 1

// LockTOMLConverter reads and writes the TOML-based lockfile format.
type LockTOMLConverter struct{}

func (c *LockTOMLConverter) Lock() bool { return true }

func (c *LockTOMLConverter) Loads(text string) (*resolve.RootDependency, error) {
	var raw rawLock
	if err := toml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(err, "parsing TOML lockfile")
	}

	root := &resolve.RootDependency{}
	for _, entry := range raw.Package {
		version, err := resolve.ParseVersion(entry.Version)
		if err != nil {
			return nil, err
		}
		dep := resolve.NewDependency(entry.Name, nil)
		dep.Extras = entry.Extras
		dep.Marker = entry.Marker
		dep.IsDev = entry.Dev
		if entry.Source != "" {
			dep.Source = &resolve.SourceLink{Kind: resolve.SourceIndex, URL: entry.Source}
		}
		dep.SetChosen(resolve.Release{Name: entry.Name, Version: version, Hashes: entry.Hashes, Origin: entry.Source})

		if entry.Dev {
			root.DevDirect = append(root.DevDirect, dep)
		} else {
			root.Direct = append(root.Direct, dep)
		}
	}

	return root, nil
}

func (c *LockTOMLConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	raw := rawLock{LockVersion: lockVersion}
	for _, req := range requirements {
		entry := rawLockedEntry{
			Name:    req.Name,
			Version: req.Version.String(),
			Hashes:  req.Hashes,
			Extras:  req.Extras,
			Marker:  req.Marker,
			Dev:     req.IsDev,
		}
		if req.Source != nil {
			entry.Source = req.Source.URL
		}
		raw.Package = append(raw.Package, entry)
	}

	out, err := toml.Marshal(raw)
	if err != nil {
		return "", errors.Wrap(err, "marshaling TOML lockfile")
	}
	return string(out), nil
}
