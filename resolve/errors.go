package resolve

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ParseError reports a failure to parse a version, specifier, marker, or
// manifest fragment. It is fatal at the boundary where it is encountered.
type ParseError struct {
	// Kind names what was being parsed: "version", "specifier", "marker",
	// or a converter-specific kind such as "pipfile".
	Kind string
	// Input is the text that failed to parse.
	Input string
	// Reason is a human-readable description of what went wrong.
	Reason string
	// Location optionally names a line/file for converter-level errors.
	Location string
	cause    error
}

func (e *ParseError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s: cannot parse %s %q: %s", e.Location, e.Kind, e.Input, e.Reason)
	}
	return fmt.Sprintf("cannot parse %s %q: %s", e.Kind, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.cause }

// RepoError reports a per-release repository failure (network or parse
// error fetching a listing or a release's declared dependencies). The
// resolver treats it as "this release is unavailable" and backtracks;
// it is never fatal on its own.
type RepoError struct {
	Repository string
	Name       string
	Version    string
	cause      error
}

func (e *RepoError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("repository %s: %s@%s: %s", e.Repository, e.Name, e.Version, e.cause)
	}
	return fmt.Sprintf("repository %s: %s: %s", e.Repository, e.Name, e.cause)
}

func (e *RepoError) Unwrap() error { return e.cause }

// NewRepoError wraps cause as a RepoError attributed to the named
// repository and package.
func NewRepoError(repository, name, version string, cause error) *RepoError {
	return &RepoError{Repository: repository, Name: name, Version: version, cause: errors.WithStack(cause)}
}

// ConflictError reports that the resolver exhausted every candidate
// without finding a mutually satisfying assignment. Report is the
// human-readable diagnostic produced by the conflict analyzer.
type ConflictError struct {
	Name    string
	Report  string
	causes  *multierror.Error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("could not resolve %s:\n%s", e.Name, e.Report)
}

// Causes returns the individual per-requester failures folded into this
// conflict, if any were recorded.
func (e *ConflictError) Causes() []error {
	if e.causes == nil {
		return nil
	}
	return e.causes.Errors
}

// ErrCancelled is returned when a caller-supplied cancellation signal fired
// between mutation steps.
var ErrCancelled = errors.New("resolution cancelled")
