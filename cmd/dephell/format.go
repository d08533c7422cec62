package main

import (
	"fmt"
	"strings"

	"github.com/dephell-go/dephell/convert"
)

// endpoint is one side of a conversion: a format name and the path (or "-"
// for stdout/stdin) it reads from or writes to. The CLI takes these as
// "format:path" positional arguments, e.g. "pipfile:Pipfile" or
// "piplock:requirements.lock".
type endpoint struct {
	Format string
	Path   string
}

func parseEndpoint(arg string) (endpoint, error) {
	format, path, ok := strings.Cut(arg, ":")
	if !ok || format == "" || path == "" {
		return endpoint{}, fmt.Errorf("%q: expected FORMAT:PATH", arg)
	}
	return endpoint{Format: format, Path: path}, nil
}

// converterFor resolves a format name to its Converter. Names match the
// ecosystem's own vocabulary for these files, not Go type names.
func converterFor(format, path string) (convert.Converter, error) {
	switch format {
	case "pip", "requirements":
		return &convert.RequirementsConverter{}, nil
	case "piplock":
		return &convert.LockedRequirementsConverter{}, nil
	case "metadata", "egginfo":
		return &convert.MetadataConverter{}, nil
	case "manifest", "pyproject":
		return &convert.ManifestTOMLConverter{}, nil
	case "lock":
		return &convert.LockTOMLConverter{}, nil
	case "pipfile":
		return &convert.PipfileConverter{}, nil
	case "pipfilelock":
		return &convert.PipfileLockConverter{}, nil
	case "setuppy":
		return &convert.LegacySetupConverter{}, nil
	case "installed":
		return &convert.InstalledConverter{Dir: path}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
