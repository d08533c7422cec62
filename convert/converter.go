// Package convert implements the manifest Converter contract: every
// supported format parses into a resolve.RootDependency and serializes a
// resolved set of resolve.Requirements back out, with round-trip stability
// and an explicit lock/manifest boundary rule.
package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/dephell-go/dephell/resolve"
)

// Converter is implemented once per manifest format.
type Converter interface {
	// Lock reports whether this format pins exact versions plus hashes
	// (true) or stores ranges (false).
	Lock() bool

	// Loads parses text into an unresolved RootDependency.
	Loads(text string) (*resolve.RootDependency, error)

	// Dumps serializes requirements back to text. priorText is the
	// destination's existing contents ("" if none); how much of it
	// survives depends on the format, and keys a format does not model,
	// comments and formatting are not carried over.
	Dumps(requirements []resolve.Requirement, project resolve.ProjectMetadata, priorText string) (string, error)
}

// Load reads and parses the manifest at path.
func Load(c Converter, path string) (*resolve.RootDependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Op: "load", cause: err}
	}
	return c.Loads(string(data))
}

// Dump serializes requirements and writes them to path, merging with the
// file's existing contents when it already exists and the format permits
// it.
func Dump(c Converter, path string, requirements []resolve.Requirement, project resolve.ProjectMetadata) error {
	var prior string
	if data, err := os.ReadFile(path); err == nil {
		prior = string(data)
	}
	text, err := c.Dumps(requirements, project, prior)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return &IOError{Path: path, Op: "dump", cause: err}
	}
	return nil
}

// IOError reports a failure reading or writing a manifest file at dump/load
// time; it is always fatal.
type IOError struct {
	Path  string
	Op    string
	cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// NewIOError constructs an IOError for callers outside this package, e.g.
// the CLI's stdin/stdout handling which bypasses Load/Dump.
func NewIOError(path, op string, cause error) *IOError {
	return &IOError{Path: path, Op: op, cause: cause}
}

// Scope recovers deps_convert.py's --level distinction between converting
// an entire project (main + dev dependency groups) and a single package
// (main dependencies only, as published). It changes which of
// RootDependency's direct sets participate, not resolver or converter
// semantics.
type Scope int

const (
	ScopeProject Scope = iota
	ScopePackage
)

func (s Scope) direct(root *resolve.RootDependency) []*resolve.Dependency {
	if s == ScopePackage {
		return root.Direct
	}
	return root.AllDirect()
}

// Convert implements the lock-boundary rule: moving from a source
// Converter to a target Converter either transcribes directly or invokes
// the resolver, depending on whether either side pins exact versions.
//
//   - non-lock → lock: the Resolver MUST run (a manifest has no pinned
//     versions to transcribe).
//   - lock → lock: direct transcription.
//   - non-lock → non-lock: direct transcription, no resolution; merging
//     transitive requirements (if the caller wants that) is its own job.
//   - lock → non-lock: direct transcription; the lock's pins become `==`
//     ranges on the way out.
func Convert(ctx context.Context, src Converter, srcText string, dst Converter, scope Scope, solve func(ctx context.Context, root *resolve.RootDependency) (*resolve.Graph, error)) ([]resolve.Requirement, resolve.ProjectMetadata, error) {
	root, err := src.Loads(srcText)
	if err != nil {
		return nil, resolve.ProjectMetadata{}, err
	}
	if scope == ScopePackage {
		root.DevDirect = nil
	}

	if !src.Lock() && dst.Lock() {
		graph, err := solve(ctx, root)
		if err != nil {
			return nil, resolve.ProjectMetadata{}, err
		}
		return resolve.RequirementsFromGraph(graph, true), graph.Metainfo(), nil
	}

	return transcribe(scope.direct(root), src.Lock(), dst.Lock()), root.Metadata, nil
}

// transcribe builds Requirements directly from a RootDependency's declared
// direct dependencies, without running the resolver:
//
//   - lock → lock: each Requirement pins the version+hashes the source
//     lock already recorded on its Dependency (HasChosen is true for
//     everything a lock loader produces).
//   - lock → non-lock: the pinned version becomes an `==<version>` range,
//     per the "lock→manifest is transcription" rule.
//   - non-lock → non-lock: the declared range is carried through as-is.
func transcribe(direct []*resolve.Dependency, srcLock, dstLock bool) []resolve.Requirement {
	out := make([]resolve.Requirement, 0, len(direct))
	for _, d := range direct {
		req := resolve.Requirement{
			Name:      d.Name,
			Canonical: d.Canonical,
			Extras:    d.Extras,
			Marker:    d.Marker,
			Source:    d.Source,
			IsDev:     d.IsDev,
		}
		switch {
		case dstLock && d.HasChosen():
			req.Version = d.Chosen.Version
			req.Hashes = d.Chosen.Hashes
		case srcLock && d.HasChosen():
			req.Range, _ = resolve.ParseRange("==" + d.Chosen.Version.String())
		default:
			req.Range = d.Constraint.EffectiveRange()
		}
		out = append(out, req)
	}
	return out
}
