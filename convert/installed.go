package convert

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/dephell-go/dephell/resolve"

	"github.com/pkg/errors"
)

// InstalledConverter inspects a site-packages-style directory tree and
// reports what's actually installed: one *.dist-info (or *.egg-info)
// directory per package, each carrying a METADATA file in the same
// RFC822-header shape MetadataConverter reads. It is read-only — Dumps
// always errors, since "writing" an installed-packages view means
// installing packages, which is deliberately out of scope (out-of-
// scope list: virtual-environment management).
type InstalledConverter struct {
	// Dir is the site-packages root to scan.
	Dir string
}

func (c *InstalledConverter) Lock() bool { return true }

func (c *InstalledConverter) Loads(text string) (*resolve.RootDependency, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, &IOError{Path: c.Dir, Op: "scan", cause: err}
	}

	root := &resolve.RootDependency{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".dist-info") && !strings.HasSuffix(name, ".egg-info") {
			continue
		}

		metaPath := filepath.Join(c.Dir, name, "METADATA")
		if _, err := os.Stat(metaPath); err != nil {
			metaPath = filepath.Join(c.Dir, name, "PKG-INFO")
		}
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue // a malformed/partial install is skipped, not fatal
		}

		pkgName, version := readDistInfoHeader(data)
		if pkgName == "" {
			continue
		}
		ver, err := resolve.ParseVersion(version)
		if err != nil {
			continue
		}
		dep := resolve.NewDependency(pkgName, nil)
		dep.SetChosen(resolve.Release{Name: pkgName, Version: ver, Origin: c.Dir})
		root.Direct = append(root.Direct, dep)
	}

	return root, nil
}

func readDistInfoHeader(data []byte) (name, version string) {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		key, value, ok := splitHeaderLine(line)
		if !ok {
			continue
		}
		switch key {
		case "Name":
			name = value
		case "Version":
			version = value
		}
	}
	return name, version
}

func (c *InstalledConverter) Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error) {
	return "", errors.New("installed-packages view is read-only")
}
