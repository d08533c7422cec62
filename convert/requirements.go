package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dephell-go/dephell/resolve"
)

// RequirementsConverter reads and writes the index-package-requirements
// text format: one requirement per line, `-e`/`-r` directives, `--hash`
// options, and trailing `; marker` clauses. It is a manifest format
// (ranges, not pins).
type RequirementsConverter struct {
	// ProjectName is used as the RootDependency's identity, since the
	// format itself carries no project metadata.
	ProjectName string
}

func (c *RequirementsConverter) Lock() bool { return false }

func (c *RequirementsConverter) Loads(text string) (*resolve.RootDependency, error) {
	root := &resolve.RootDependency{Metadata: resolve.ProjectMetadata{Name: c.ProjectName}}

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "-r ") || strings.HasPrefix(line, "--requirement ") {
			// A nested requirements file; resolving the include is the
			// caller's job (it knows the filesystem root), so it's
			// recorded as a no-op here rather than guessed at.
			continue
		}

		editable := false
		if strings.HasPrefix(line, "-e ") || strings.HasPrefix(line, "--editable ") {
			editable = true
			line = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "-e"), "--editable"))
		}

		line, hashes := stripHashOptions(line)

		decl, err := resolve.ParseRequirementLine(line)
		if err != nil {
			pe := err
			if parseErr, ok := err.(*resolve.ParseError); ok {
				parseErr.Location = fmt.Sprintf("line %d", lineNo+1)
				pe = parseErr
			}
			return nil, pe
		}

		dep := resolve.NewDependency(decl.Name, nil)
		dep.Constraint.Attach(resolve.Requester("root"), decl.Range.String(), nil)
		dep.Extras = decl.Extras
		dep.Marker = decl.Marker
		if editable {
			dep.Source = &resolve.SourceLink{Kind: resolve.SourceLocalPath, Editable: true}
		}
		_ = hashes // carried at lock time only; a manifest-format requirement has no hashes of its own

		root.Direct = append(root.Direct, dep)
	}

	return root, nil
}

func (c *RequirementsConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	sorted := make([]resolve.Requirement, len(requirements))
	copy(sorted, requirements)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Canonical < sorted[j].Canonical })

	var buf strings.Builder
	for _, req := range sorted {
		if req.IsDev {
			continue
		}
		buf.WriteString(formatRequirementLine(req))
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// LockedRequirementsConverter reads and writes the companion pinned-and-
// hashed requirements file (the other half of the "two-file install-
// requirements + lock pair"): the same line grammar, but
// every entry is expected to carry an exact `==` pin and, typically,
// `--hash` options.
type LockedRequirementsConverter struct {
	ProjectName string
}

func (c *LockedRequirementsConverter) Lock() bool { return true }

func (c *LockedRequirementsConverter) Loads(text string) (*resolve.RootDependency, error) {
	root := &resolve.RootDependency{Metadata: resolve.ProjectMetadata{Name: c.ProjectName}}

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line, hashes := stripHashOptions(line)

		decl, err := resolve.ParseRequirementLine(line)
		if err != nil {
			if parseErr, ok := err.(*resolve.ParseError); ok {
				parseErr.Location = fmt.Sprintf("line %d", lineNo+1)
			}
			return nil, err
		}

		version, verr := versionFromPin(decl.Range)
		if verr != nil {
			return nil, &resolve.ParseError{Kind: "requirement", Input: line, Reason: "locked requirement must pin an exact version", Location: fmt.Sprintf("line %d", lineNo+1)}
		}

		dep := resolve.NewDependency(decl.Name, nil)
		dep.Extras = decl.Extras
		dep.Marker = decl.Marker
		dep.SetChosen(resolve.Release{Name: decl.Name, Version: version, Hashes: hashes})

		root.Direct = append(root.Direct, dep)
	}

	return root, nil
}

func (c *LockedRequirementsConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	sorted := make([]resolve.Requirement, len(requirements))
	copy(sorted, requirements)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Canonical < sorted[j].Canonical })

	var buf strings.Builder
	for _, req := range sorted {
		if req.IsDev {
			continue
		}
		fmt.Fprintf(&buf, "%s==%s", req.Name, req.Version.String())
		for _, h := range req.Hashes {
			fmt.Fprintf(&buf, " --hash=%s", h)
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func versionFromPin(r resolve.RangeSpecifier) (resolve.Version, error) {
	clauses := r.Clauses()
	if len(clauses) != 1 || clauses[0].Operator != resolve.OpEQ {
		return resolve.Version{}, fmt.Errorf("not a single == pin")
	}
	return clauses[0].Version, nil
}

func stripHashOptions(line string) (string, []string) {
	var hashes []string
	fields := strings.Fields(line)
	var kept []string
	for _, f := range fields {
		if strings.HasPrefix(f, "--hash=") {
			hashes = append(hashes, strings.TrimPrefix(f, "--hash="))
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " "), hashes
}

func formatRequirementLine(req resolve.Requirement) string {
	var buf strings.Builder
	buf.WriteString(req.Name)
	if len(req.Extras) > 0 {
		fmt.Fprintf(&buf, "[%s]", strings.Join(req.Extras, ","))
	}
	if s := req.Range.String(); s != "" && s != "*" {
		buf.WriteString(s)
	}
	if req.Marker != "" {
		fmt.Fprintf(&buf, "; %s", req.Marker)
	}
	return buf.String()
}
