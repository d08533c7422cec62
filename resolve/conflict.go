package resolve

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// analyzeConflict builds the human-readable conflict report, in the
// style used for a disjoint-constraint failure: name the package that
// could not be satisfied, then list every requester's range and the
// candidate versions it admits, so the report reads as an explanation rather
// than a stack trace.
func analyzeConflict(g *Graph) *ConflictError {
	node := g.Conflict()
	if node == nil {
		// No statically-identifiable conflict node; report the first
		// unapplied dependency as the point where search ran out of room.
		for _, d := range g.All() {
			if !d.Applied {
				node = d
				break
			}
		}
	}
	if node == nil {
		return &ConflictError{Name: "(unknown)", Report: "resolution failed for an unreported reason"}
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "no version of %s satisfies every requester:\n", node.Name)

	var causes *multierror.Error
	for _, line := range node.Constraint.describeGroups() {
		fmt.Fprintf(&buf, "  - %s\n", line)
		causes = multierror.Append(causes, fmt.Errorf("%s", line))
	}
	if len(node.Constraint.Sources()) == 0 {
		fmt.Fprintf(&buf, "  (no requester currently attached; search exhausted at this level)\n")
	}

	return &ConflictError{Name: node.Name, Report: strings.TrimRight(buf.String(), "\n"), causes: causes}
}

func (r *Resolver) conflictError() *ConflictError {
	err := analyzeConflict(r.graph)
	r.trace.failed(err.Name, err.Report)
	return err
}
