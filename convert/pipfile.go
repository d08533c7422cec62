package convert

import (
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/dephell-go/dephell/resolve"
)

// rawPipfile mirrors the two-table TOML Pipfile format: an array of
// package sources, then [packages]/[dev-packages] tables whose values are
// either a bare version string or an inline table carrying version,
// extras, markers, and link information.
type rawPipfile struct {
	Source []struct {
		Name      string `toml:"name"`
		URL       string `toml:"url"`
		VerifySSL bool   `toml:"verify_ssl"`
	} `toml:"source"`
	Packages    map[string]interface{} `toml:"packages"`
	DevPackages map[string]interface{} `toml:"dev-packages"`
}

var pipfileVCSKeys = []string{"git", "svn", "hg", "bzr"}

// PipfileConverter reads and writes Pipfile. It is a manifest format
// (ranges, not pins) — PipfileLockConverter is its locked companion.
type PipfileConverter struct{}

func (c *PipfileConverter) Lock() bool { return false }

func (c *PipfileConverter) Loads(text string) (*resolve.RootDependency, error) {
	var raw rawPipfile
	if err := toml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(err, "parsing Pipfile")
	}

	sources := make(map[string]string, len(raw.Source))
	for _, s := range raw.Source {
		sources[s.Name] = s.URL
	}

	root := &resolve.RootDependency{}
	direct, err := pipfileSection(raw.Packages, sources, false)
	if err != nil {
		return nil, err
	}
	dev, err := pipfileSection(raw.DevPackages, sources, true)
	if err != nil {
		return nil, err
	}
	root.Direct = direct
	root.DevDirect = dev
	return root, nil
}

func pipfileSection(section map[string]interface{}, sources map[string]string, isDev bool) ([]*resolve.Dependency, error) {
	var out []*resolve.Dependency
	for name, raw := range section {
		dep, err := pipfileEntryToDependency(name, raw, sources)
		if err != nil {
			return nil, err
		}
		dep.IsDev = isDev
		out = append(out, dep)
	}
	return out, nil
}

func pipfileEntryToDependency(name string, raw interface{}, sources map[string]string) (*resolve.Dependency, error) {
	dep := resolve.NewDependency(name, nil)

	if version, ok := raw.(string); ok {
		return dep, attachPipfileRange(dep, version)
	}

	table, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &resolve.ParseError{Kind: "pipfile", Input: name, Reason: "package entry must be a string or table"}
	}

	if v, ok := table["version"].(string); ok {
		if err := attachPipfileRange(dep, v); err != nil {
			return nil, err
		}
	} else {
		attachPipfileRange(dep, "")
	}

	if extras, ok := table["extras"].([]interface{}); ok {
		for _, e := range extras {
			if s, ok := e.(string); ok {
				dep.Extras = append(dep.Extras, s)
			}
		}
	}
	if marker, ok := table["markers"].(string); ok {
		dep.Marker = marker
	}
	if editable, ok := table["editable"].(bool); ok && editable {
		if dep.Source == nil {
			dep.Source = &resolve.SourceLink{}
		}
		dep.Source.Editable = true
	}
	if idx, ok := table["index"].(string); ok {
		if url, known := sources[idx]; known {
			if dep.Source == nil {
				dep.Source = &resolve.SourceLink{Kind: resolve.SourceIndex}
			}
			dep.Source.URL = url
		}
	}

	for _, vcsKey := range pipfileVCSKeys {
		if remote, ok := table[vcsKey].(string); ok {
			link := dep.Source
			if link == nil {
				link = &resolve.SourceLink{}
				dep.Source = link
			}
			link.Kind = resolve.SourceVCS
			link.URL = remote
			if ref, ok := table["ref"].(string); ok {
				link.Ref = ref
			}
			break
		}
	}
	if path, ok := table["path"].(string); ok {
		dep.Source = &resolve.SourceLink{Kind: resolve.SourceLocalPath, Path: path}
	}
	if file, ok := table["file"].(string); ok {
		dep.Source = &resolve.SourceLink{Kind: resolve.SourceArchive, URL: file}
	}
	if uri, ok := table["uri"].(string); ok {
		dep.Source = &resolve.SourceLink{Kind: resolve.SourceArchive, URL: uri}
	}
	if subdir, ok := table["subdirectory"].(string); ok && dep.Source != nil {
		dep.Source.Subdir = subdir
	}

	return dep, nil
}

func attachPipfileRange(dep *resolve.Dependency, version string) error {
	if version == "" || version == "*" {
		_, err := dep.Constraint.Attach(resolve.Requester("root"), "", nil)
		return err
	}
	_, err := dep.Constraint.Attach(resolve.Requester("root"), version, nil)
	return err
}

func (c *PipfileConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	raw := rawPipfile{
		Packages:    make(map[string]interface{}),
		DevPackages: make(map[string]interface{}),
	}
	if priorText != "" {
		var prior rawPipfile
		if err := toml.Unmarshal([]byte(priorText), &prior); err == nil {
			raw.Source = prior.Source
		}
	}

	seenSources := make(map[string]bool)
	for _, s := range raw.Source {
		seenSources[s.Name] = true
	}

	for _, req := range requirements {
		entry := pipfileEntryFromRequirement(req)

		if req.Source != nil && req.Source.Kind == resolve.SourceIndex && req.Source.URL != "" {
			indexName := req.Canonical + "-index"
			if !seenSources[indexName] {
				raw.Source = append(raw.Source, struct {
					Name      string `toml:"name"`
					URL       string `toml:"url"`
					VerifySSL bool   `toml:"verify_ssl"`
				}{Name: indexName, URL: req.Source.URL, VerifySSL: true})
				seenSources[indexName] = true
			}
		}

		if req.IsDev {
			raw.DevPackages[req.Name] = entry
		} else {
			raw.Packages[req.Name] = entry
		}
	}

	out, err := toml.Marshal(raw)
	if err != nil {
		return "", errors.Wrap(err, "marshaling Pipfile")
	}
	return string(out), nil
}

// pipfileEntryFromRequirement renders one Requirement back into either a
// bare version string or an inline-table-shaped map, following
// PIPFileConverter._format_req's "string if only version, else table" rule.
func pipfileEntryFromRequirement(req resolve.Requirement) interface{} {
	table := make(map[string]interface{})

	version := req.Range.String()
	if req.Version.String() != "" {
		version = "==" + req.Version.String()
	}
	if version != "" {
		table["version"] = version
	}
	if len(req.Extras) > 0 {
		table["extras"] = req.Extras
	}
	if req.Marker != "" {
		table["markers"] = req.Marker
	}
	if req.Source != nil {
		switch req.Source.Kind {
		case resolve.SourceVCS:
			table["git"] = req.Source.URL
			if req.Source.Ref != "" {
				table["ref"] = req.Source.Ref
			}
		case resolve.SourceLocalPath:
			table["path"] = req.Source.Path
		case resolve.SourceArchive:
			table["file"] = req.Source.URL
		}
		if req.Source.Editable {
			table["editable"] = true
		}
		if req.Source.Subdir != "" {
			table["subdirectory"] = req.Source.Subdir
		}
	}

	if len(table) == 1 {
		if v, ok := table["version"]; ok {
			return v
		}
	}
	if len(table) == 0 {
		return "*"
	}
	return table
}

// PipfileLockConverter reads and writes Pipfile.lock: the exact-pin
// companion to PipfileConverter, keyed the same way but storing resolved
// versions and hashes instead of ranges.
type PipfileLockConverter struct{}

func (c *PipfileLockConverter) Lock() bool { return true }

func (c *PipfileLockConverter) Loads(text string) (*resolve.RootDependency, error) {
	var raw struct {
		Default map[string]interface{} `toml:"default"`
		Develop map[string]interface{} `toml:"develop"`
	}
	if err := toml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(err, "parsing Pipfile.lock")
	}

	root := &resolve.RootDependency{}
	for name, entry := range raw.Default {
		dep, err := pipfileLockEntryToDependency(name, entry, false)
		if err != nil {
			return nil, err
		}
		root.Direct = append(root.Direct, dep)
	}
	for name, entry := range raw.Develop {
		dep, err := pipfileLockEntryToDependency(name, entry, true)
		if err != nil {
			return nil, err
		}
		root.DevDirect = append(root.DevDirect, dep)
	}
	return root, nil
}

func pipfileLockEntryToDependency(name string, raw interface{}, isDev bool) (*resolve.Dependency, error) {
	table, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &resolve.ParseError{Kind: "pipfile-lock", Input: name, Reason: "locked entry must be a table"}
	}
	versionStr, _ := table["version"].(string)
	versionStr = strings.TrimPrefix(versionStr, "==")
	version, err := resolve.ParseVersion(versionStr)
	if err != nil {
		return nil, err
	}

	var hashes []string
	if raw, ok := table["hashes"].([]interface{}); ok {
		for _, h := range raw {
			if s, ok := h.(string); ok {
				hashes = append(hashes, s)
			}
		}
	}

	dep := resolve.NewDependency(name, nil)
	dep.IsDev = isDev
	dep.SetChosen(resolve.Release{Name: name, Version: version, Hashes: hashes})
	return dep, nil
}

func (c *PipfileLockConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	out := struct {
		Default map[string]interface{} `toml:"default"`
		Develop map[string]interface{} `toml:"develop"`
	}{
		Default: make(map[string]interface{}),
		Develop: make(map[string]interface{}),
	}

	for _, req := range requirements {
		entry := map[string]interface{}{"version": "==" + req.Version.String()}
		if len(req.Hashes) > 0 {
			hashes := make([]interface{}, len(req.Hashes))
			for i, h := range req.Hashes {
				hashes[i] = h
			}
			entry["hashes"] = hashes
		}
		if req.IsDev {
			out.Develop[req.Name] = entry
		} else {
			out.Default[req.Name] = entry
		}
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "marshaling Pipfile.lock")
	}
	return string(data), nil
}
