// Command dephell converts between Python dependency manifest formats,
// resolving versions when the target format requires pins the source
// doesn't carry.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dephell-go/dephell/convert"
	"github.com/dephell-go/dephell/internal/env"
	"github.com/dephell-go/dephell/resolve"
)

// Exit codes distinguish the error kinds so scripts driving
// this tool can react without scraping stderr.
const (
	exitOK = iota
	exitUsage
	exitParse
	exitRepo
	exitConflict
	exitCancelled
	exitIO
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	var (
		silent    bool
		level     string
		indexURL  string
		pyVersion string
	)

	cmd := &cobra.Command{
		Use:   "dephell FROM TO",
		Short: "Convert Python dependency manifests, resolving when the target needs pins",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseEndpoint(args[0])
			if err != nil {
				return usageError{err}
			}
			to, err := parseEndpoint(args[1])
			if err != nil {
				return usageError{err}
			}

			scope := convert.ScopeProject
			if level == "package" {
				scope = convert.ScopePackage
			}

			logger := logrus.New()
			logger.SetOutput(stderr)
			if silent {
				logger.SetLevel(logrus.PanicLevel)
			}

			return convertFiles(cmd.Context(), convertArgs{
				from:      from,
				to:        to,
				scope:     scope,
				indexURL:  indexURL,
				pyVersion: pyVersion,
				logger:    logger,
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().BoolVar(&silent, "silent", false, "suppress progress output")
	cmd.Flags().StringVar(&level, "level", "project", "conversion scope: project or package")
	cmd.Flags().StringVar(&indexURL, "index-url", "https://pypi.org/pypi", "package index base URL")
	cmd.Flags().StringVar(&pyVersion, "python-version", "", "python_version to evaluate markers against (default "+env.DefaultPythonVersion+")")

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		return exitCodeFor(err, stderr)
	}
	return exitOK
}

type usageError struct{ cause error }

func (e usageError) Error() string { return e.cause.Error() }
func (e usageError) Unwrap() error { return e.cause }

func exitCodeFor(err error, stderr *os.File) int {
	fmt.Fprintln(stderr, "dephell:", err)

	var usageErr usageError
	var parseErr *resolve.ParseError
	var repoErr *resolve.RepoError
	var conflictErr *resolve.ConflictError
	var ioErr *convert.IOError

	switch {
	case errors.As(err, &usageErr):
		return exitUsage
	case errors.Is(err, resolve.ErrCancelled):
		return exitCancelled
	case errors.As(err, &conflictErr):
		return exitConflict
	case errors.As(err, &ioErr):
		return exitIO
	case errors.As(err, &repoErr):
		return exitRepo
	case errors.As(err, &parseErr):
		return exitParse
	default:
		return exitUsage
	}
}
