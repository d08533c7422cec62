package convert

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/dephell-go/dephell/resolve"
)

// rawManifest mirrors the TOML-based project manifest: a build-system
// table plus a project table carrying metadata and range-based
// dependencies, using a raw-struct +
// toml.Marshal/Unmarshal pattern, generalized from a single flat table to
// the two-table (build-system/project) shape this format needs.
type rawManifest struct {
	BuildSystem struct {
		Requires     []string `toml:"requires,omitempty"`
		BuildBackend string   `toml:"build-backend,omitempty"`
	} `toml:"build-system"`

	Project struct {
		Name               string              `toml:"name"`
		Version            string              `toml:"version,omitempty"`
		Description        string              `toml:"description,omitempty"`
		Authors            []string            `toml:"authors,omitempty"`
		License            string              `toml:"license,omitempty"`
		Readme             string               `toml:"readme,omitempty"`
		RequiresPython     string              `toml:"requires-python,omitempty"`
		Dependencies       []string            `toml:"dependencies,omitempty"`
		DependencyGroups   map[string][]string `toml:"dependency-groups,omitempty"`
	} `toml:"project"`
}

// ManifestTOMLConverter reads and writes the TOML project-manifest format.
type ManifestTOMLConverter struct{}

func (c *ManifestTOMLConverter) Lock() bool { return false }

func (c *ManifestTOMLConverter) Loads(text string) (*resolve.RootDependency, error) {
	var raw rawManifest
	if err := toml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(err, "parsing TOML manifest")
	}

	root := &resolve.RootDependency{Metadata: resolve.ProjectMetadata{
		Name:          raw.Project.Name,
		Version:       raw.Project.Version,
		Description:   raw.Project.Description,
		Authors:       raw.Project.Authors,
		License:       raw.Project.License,
		Readme:        raw.Project.Readme,
		PythonVersion: raw.Project.RequiresPython,
	}}

	for _, line := range raw.Project.Dependencies {
		dep, err := declToDependency(line, false)
		if err != nil {
			return nil, err
		}
		root.Direct = append(root.Direct, dep)
	}
	for group, lines := range raw.Project.DependencyGroups {
		isDev := group == "dev" || group == "test"
		for _, line := range lines {
			dep, err := declToDependency(line, isDev)
			if err != nil {
				return nil, err
			}
			if isDev {
				root.DevDirect = append(root.DevDirect, dep)
			} else {
				root.Direct = append(root.Direct, dep)
			}
		}
	}

	return root, nil
}

func (c *ManifestTOMLConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	var raw rawManifest
	if priorText != "" {
		// Best-effort merge: start from the prior document so its
		// build-system table survives, then overwrite the fields this
		// converter owns. Only keys rawManifest models are kept; any
		// other table or project field in priorText is dropped.
		_ = toml.Unmarshal([]byte(priorText), &raw)
	}

	raw.Project.Name = project.Name
	raw.Project.Version = project.Version
	raw.Project.Description = project.Description
	raw.Project.Authors = project.Authors
	raw.Project.License = project.License
	raw.Project.Readme = project.Readme
	raw.Project.RequiresPython = project.PythonVersion

	raw.Project.Dependencies = nil
	dev := make([]string, 0)
	for _, req := range requirements {
		line := formatRequirementLine(req)
		if req.IsDev {
			dev = append(dev, line)
			continue
		}
		raw.Project.Dependencies = append(raw.Project.Dependencies, line)
	}
	if len(dev) > 0 {
		if raw.Project.DependencyGroups == nil {
			raw.Project.DependencyGroups = make(map[string][]string)
		}
		raw.Project.DependencyGroups["dev"] = dev
	}

	out, err := toml.Marshal(raw)
	if err != nil {
		return "", errors.Wrap(err, "marshaling TOML manifest")
	}
	return string(out), nil
}

func declToDependency(line string, isDev bool) (*resolve.Dependency, error) {
	decl, err := resolve.ParseRequirementLine(line)
	if err != nil {
		return nil, err
	}
	dep := resolve.NewDependency(decl.Name, nil)
	dep.Constraint.Attach(resolve.Requester("root"), decl.Range.String(), nil)
	dep.Extras = decl.Extras
	dep.Marker = decl.Marker
	dep.IsDev = isDev
	return dep, nil
}
