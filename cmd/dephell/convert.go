package main

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dephell-go/dephell/convert"
	"github.com/dephell-go/dephell/internal/env"
	"github.com/dephell-go/dephell/repository"
	"github.com/dephell-go/dephell/resolve"
)

type convertArgs struct {
	from, to  endpoint
	scope     convert.Scope
	indexURL  string
	pyVersion string
	logger    *logrus.Logger
}

func convertFiles(ctx context.Context, a convertArgs) error {
	srcConverter, err := converterFor(a.from.Format, a.from.Path)
	if err != nil {
		return usageError{err}
	}
	dstConverter, err := converterFor(a.to.Format, a.to.Path)
	if err != nil {
		return usageError{err}
	}

	srcText, err := readEndpoint(a.from)
	if err != nil {
		return err
	}

	repo := repository.NewIndexRepository(a.indexURL, http.DefaultClient)
	environment := env.Capture(env.Options{PythonVersion: a.pyVersion})
	trace := resolve.NewTrace(a.logger)

	solve := func(ctx context.Context, root *resolve.RootDependency) (*resolve.Graph, error) {
		resolver := resolve.NewResolver(resolve.SolveParameters{
			Root:        root,
			Repository:  repo,
			Environment: environment,
			Trace:       trace,
		})
		return resolver.Solve(ctx)
	}

	requirements, project, err := convert.Convert(ctx, srcConverter, srcText, dstConverter, a.scope, solve)
	if err != nil {
		return err
	}

	return writeEndpoint(a.to, dstConverter, requirements, project)
}

func readEndpoint(e endpoint) (string, error) {
	if e.Path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", convert.NewIOError("-", "load", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return "", convert.NewIOError(e.Path, "load", err)
	}
	return string(data), nil
}

func writeEndpoint(e endpoint, c convert.Converter, requirements []resolve.Requirement, project resolve.ProjectMetadata) error {
	if e.Path == "-" || e.Path == "stdout" {
		text, err := c.Dumps(requirements, project, "")
		if err != nil {
			return err
		}
		_, err = os.Stdout.WriteString(text)
		return err
	}
	return convert.Dump(c, e.Path, requirements, project)
}
