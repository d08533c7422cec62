package convert

import (
	"strings"

	"github.com/dephell-go/dephell/resolve"
)

// MetadataConverter reads the archive metadata format: an RFC822-style
// header block (the shape a built package's own METADATA/PKG-INFO file
// takes) carrying Name, Version, Requires-Dist (repeated), and
// Requires-Python. Dumps writes the same header shape back; comments and
// header ordering of an existing file are not carried over.
type MetadataConverter struct{}

func (c *MetadataConverter) Lock() bool { return false }

func (c *MetadataConverter) Loads(text string) (*resolve.RootDependency, error) {
	root := &resolve.RootDependency{}

	for _, raw := range strings.Split(text, "\n") {
		line := raw
		if line == "" {
			continue
		}
		key, value, ok := splitHeaderLine(line)
		if !ok {
			continue
		}
		switch key {
		case "Name":
			root.Metadata.Name = value
		case "Version":
			root.Metadata.Version = value
		case "Summary":
			root.Metadata.Description = value
		case "Author":
			root.Metadata.Authors = append(root.Metadata.Authors, value)
		case "License":
			root.Metadata.License = value
		case "Home-page", "Project-URL":
			root.Metadata.URL = value
		case "Requires-Python":
			root.Metadata.PythonVersion = value
		case "Requires-Dist":
			decl, err := resolve.ParseRequirementLine(value)
			if err != nil {
				return nil, err
			}
			dep := resolve.NewDependency(decl.Name, nil)
			dep.Constraint.Attach(resolve.Requester("root"), decl.Range.String(), nil)
			dep.Extras = decl.Extras
			dep.Marker = decl.Marker
			root.Direct = append(root.Direct, dep)
		}
	}

	return root, nil
}

func (c *MetadataConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	var buf strings.Builder
	buf.WriteString("Metadata-Version: 2.1\n")
	if project.Name != "" {
		buf.WriteString("Name: " + project.Name + "\n")
	}
	if project.Version != "" {
		buf.WriteString("Version: " + project.Version + "\n")
	}
	if project.Description != "" {
		buf.WriteString("Summary: " + project.Description + "\n")
	}
	if project.License != "" {
		buf.WriteString("License: " + project.License + "\n")
	}
	if project.PythonVersion != "" {
		buf.WriteString("Requires-Python: " + project.PythonVersion + "\n")
	}
	for _, req := range requirements {
		buf.WriteString("Requires-Dist: " + formatRequirementLine(req) + "\n")
	}
	return buf.String(), nil
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}
