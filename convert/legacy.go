package convert

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dephell-go/dephell/resolve"
)

// LegacySetupConverter statically extracts install_requires,
// extras_require, and python_requires out of a setup.py-shaped text file,
// without executing it — Python's setup() call can run arbitrary code, so
// the only safe reading strategy is a best-effort text scan for the
// keyword-argument literals, the same restraint applied to every
// legacy reader ("by static parsing, not execution, where possible").
//
// Parses a setup(...) call whose install_requires/extras_require arguments
// are Python list/dict literals of quoted strings.
type LegacySetupConverter struct{}

func (c *LegacySetupConverter) Lock() bool { return false }

var (
	installRequiresRe = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)
	pythonRequiresRe  = regexp.MustCompile(`python_requires\s*=\s*(['"])(.*?)['"]`)
	nameRe            = regexp.MustCompile(`(?m)^\s*name\s*=\s*(['"])(.*?)['"]`)
	versionRe         = regexp.MustCompile(`(?m)^\s*version\s*=\s*(['"])(.*?)['"]`)
	extrasBlockRe     = regexp.MustCompile(`(?s)extras_require\s*=\s*\{(.*)\n?\s*\}`)
	extrasEntryRe     = regexp.MustCompile(`(?s)(['"])([\w.\-]+)['"]\s*:\s*\[(.*?)\]`)
	quotedStringRe    = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

func (c *LegacySetupConverter) Loads(text string) (*resolve.RootDependency, error) {
	root := &resolve.RootDependency{}

	if m := nameRe.FindStringSubmatch(text); m != nil {
		root.Metadata.Name = m[2]
	}
	if m := versionRe.FindStringSubmatch(text); m != nil {
		root.Metadata.Version = m[2]
	}
	if m := pythonRequiresRe.FindStringSubmatch(text); m != nil {
		root.Metadata.PythonVersion = m[2]
	}

	if m := installRequiresRe.FindStringSubmatch(text); m != nil {
		for _, line := range extractQuotedStrings(m[1]) {
			dep, err := declToDependency(line, false)
			if err != nil {
				continue // a literal that doesn't parse as a requirement is skipped, not fatal
			}
			root.Direct = append(root.Direct, dep)
		}
	}

	if m := extrasBlockRe.FindStringSubmatch(text); m != nil {
		for _, entry := range extrasEntryRe.FindAllStringSubmatch(m[1], -1) {
			extra := entry[2]
			for _, line := range extractQuotedStrings(entry[3]) {
				dep, err := declToDependency(line, extra == "dev" || extra == "tests" || extra == "test")
				if err != nil {
					continue
				}
				dep.Extras = append(dep.Extras, extra)
				root.Direct = append(root.Direct, dep)
			}
		}
	}

	return root, nil
}

func extractQuotedStrings(block string) []string {
	matches := quotedStringRe.FindAllStringSubmatch(block, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// Dumps regenerates a minimal setup.py in an autogenerated style
// ("DO NOT EDIT THIS FILE!").
func (c *LegacySetupConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	var buf strings.Builder
	buf.WriteString("# -*- coding: utf-8 -*-\n")
	buf.WriteString("# DO NOT EDIT THIS FILE!\n\n")
	buf.WriteString("from setuptools import setup\n\n")
	buf.WriteString("setup(\n")
	buf.WriteString("    name=" + strconv.Quote(project.Name) + ",\n")
	buf.WriteString("    version=" + strconv.Quote(project.Version) + ",\n")
	if project.Description != "" {
		buf.WriteString("    description=" + strconv.Quote(project.Description) + ",\n")
	}
	if project.PythonVersion != "" {
		buf.WriteString("    python_requires=" + strconv.Quote(project.PythonVersion) + ",\n")
	}

	var main []string
	extras := make(map[string][]string)
	for _, req := range requirements {
		// Extras here names the setup.py extras_require group this
		// requirement belongs to, not a package extra to render in the
		// requirement text itself, so it's cleared before formatting.
		if len(req.Extras) == 1 {
			group := req.Extras[0]
			bare := req
			bare.Extras = nil
			extras[group] = append(extras[group], strconv.Quote(formatRequirementLine(bare)))
			continue
		}
		main = append(main, strconv.Quote(formatRequirementLine(req)))
	}

	buf.WriteString("    install_requires=[" + strings.Join(main, ", ") + "],\n")
	if len(extras) > 0 {
		buf.WriteString("    extras_require={\n")
		for name, deps := range extras {
			buf.WriteString("        " + strconv.Quote(name) + ": [" + strings.Join(deps, ", ") + "],\n")
		}
		buf.WriteString("    },\n")
	}
	buf.WriteString(")\n")
	return buf.String(), nil
}
