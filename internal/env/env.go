// Package env builds the fixed marker-evaluation snapshot resolve.Environment
// expects, captured once at resolver entry so two evaluations of the same
// marker within one run never disagree.
package env

import (
	"runtime"

	"github.com/dephell-go/dephell/resolve"
)

// DefaultPythonVersion is used when no explicit flag names the interpreter
// being targeted; no environment variable is consulted.
// dephell itself targeted python_requires='>=3.5'; 3.11 is a safe,
// currently-supported default for marker evaluation against it.
const DefaultPythonVersion = "3.11"

// Options overrides individual snapshot fields; zero values fall back to the
// runtime platform or DefaultPythonVersion.
type Options struct {
	PythonVersion string
	Extra         string
}

// Capture builds the Environment a solve runs against. GOOS/GOARCH stand in
// for the platform facts a real Python interpreter would report, since this
// process never runs one.
func Capture(opts Options) resolve.Environment {
	pyVersion := opts.PythonVersion
	if pyVersion == "" {
		pyVersion = DefaultPythonVersion
	}

	return resolve.Environment{
		PythonVersion:      pyVersion,
		PythonFullVersion:  pyVersion + ".0",
		OSName:             osName(),
		SysPlatform:        sysPlatform(),
		PlatformSystem:     platformSystem(),
		PlatformMachine:    runtime.GOARCH,
		ImplementationName: "cpython",
		Extra:              opts.Extra,
	}
}

func osName() string {
	if runtime.GOOS == "windows" {
		return "nt"
	}
	return "posix"
}

func sysPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "darwin"
	case "windows":
		return "win32"
	default:
		return "linux"
	}
}

func platformSystem() string {
	switch runtime.GOOS {
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		return "Linux"
	}
}
