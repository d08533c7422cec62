package resolve

import "strings"

// CanonicalName folds a package name to lowercase and collapses runs of
// '-', '_', '.' to a single '-', per the GLOSSARY. Graph, Constraint, and
// every Repository cache key on this form so that "Foo_Bar", "foo-bar",
// and "foo.bar" all refer to the same node.
func CanonicalName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastDash := false
	for _, r := range strings.ToLower(name) {
		switch r {
		case '-', '_', '.':
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		default:
			b.WriteRune(r)
			lastDash = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
