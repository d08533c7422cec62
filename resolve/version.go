// Package resolve implements the dependency-resolution engine: the
// version-constraint algebra, the backtracking solver, and the graph and
// requirement types that feed and drain it.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Version is a single, opaque, totally ordered identifier for a release.
//
// It follows the release/pre/post/dev/local version scheme common to
// package ecosystems that are not strict SemVer: a numeric release segment
// compared component-wise, pre-release and dev segments that sort below the
// plain release, a post-release segment that sorts above it, and a local
// segment compared lexicographically once everything else is equal.
type Version struct {
	Release []int
	Pre     *PreTag
	Post    *int
	Dev     *int
	Local   []string

	raw string
}

// PreTag is the (label, number) pair of a pre-release segment, e.g. "a1",
// "b2", "rc3".
type PreTag struct {
	Label string
	N     int
}

var preLabelRank = map[string]int{
	"a":  0,
	"b":  1,
	"rc": 2,
}

func normalizePreLabel(l string) string {
	switch l {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	default:
		return l
	}
}

// ParseVersion parses a version string into its release/pre/post/dev/local
// components. It accepts the common ecosystem spelling:
//
//	N(.N)*[{a|b|rc}N][.postN][.devN][+local.segments]
func ParseVersion(s string) (Version, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, &ParseError{Kind: "version", Input: raw, Reason: "empty version string"}
	}

	var v Version
	v.raw = raw

	// Split off the local segment first; it is not part of the public
	// version and is never itself parsed as release/pre/post/dev.
	public := s
	if i := strings.IndexByte(s, '+'); i >= 0 {
		public = s[:i]
		local := s[i+1:]
		if local == "" {
			return Version{}, &ParseError{Kind: "version", Input: raw, Reason: "empty local version segment"}
		}
		v.Local = strings.FieldsFunc(local, func(r rune) bool { return r == '.' || r == '-' || r == '_' })
	}

	rest := public

	// dev segment: ".devN" may appear at the very end.
	if i := strings.LastIndex(rest, ".dev"); i >= 0 {
		n, err := parseTagNumber(rest[i+len(".dev"):])
		if err != nil {
			return Version{}, &ParseError{Kind: "version", Input: raw, Reason: "invalid dev segment: " + err.Error()}
		}
		v.Dev = &n
		rest = rest[:i]
	}

	// post segment: only the ".postN" spelling is recognized.
	if i := strings.LastIndex(rest, ".post"); i >= 0 {
		n, err := parseTagNumber(rest[i+len(".post"):])
		if err != nil {
			return Version{}, &ParseError{Kind: "version", Input: raw, Reason: "invalid post segment: " + err.Error()}
		}
		v.Post = &n
		rest = rest[:i]
	}

	// pre-release segment: an alpha run immediately followed by digits,
	// e.g. "a1", "b2", "rc3", with optional separating '.' or '-'.
	if idx, label, numStart := findPreTag(rest); idx >= 0 {
		n, err := parseTagNumber(rest[numStart:])
		if err != nil {
			return Version{}, &ParseError{Kind: "version", Input: raw, Reason: "invalid pre-release segment: " + err.Error()}
		}
		norm := normalizePreLabel(strings.ToLower(label))
		if _, ok := preLabelRank[norm]; !ok {
			return Version{}, &ParseError{Kind: "version", Input: raw, Reason: fmt.Sprintf("unknown pre-release label %q", label)}
		}
		v.Pre = &PreTag{Label: norm, N: n}
		rest = rest[:idx]
	}

	rest = strings.TrimRight(rest, ".-")
	if rest == "" {
		return Version{}, &ParseError{Kind: "version", Input: raw, Reason: "missing release segment"}
	}

	for _, seg := range strings.Split(rest, ".") {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return Version{}, &ParseError{Kind: "version", Input: raw, Reason: fmt.Sprintf("invalid release segment %q", seg)}
		}
		v.Release = append(v.Release, n)
	}

	return v, nil
}

// parseTagNumber parses the trailing integer of a pre/post/dev tag. An
// empty string is treated as 0, matching the ecosystem convention that
// "a" alone means "a0".
func parseTagNumber(s string) (int, error) {
	s = strings.TrimLeft(s, ".-")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing tag number %q", s)
	}
	return n, nil
}

// findPreTag locates a trailing pre-release label run ("a", "b", "rc", ...)
// in rest, returning the index where it starts, the label text, and the
// index where its trailing digits begin. Returns idx < 0 if none is found.
func findPreTag(rest string) (idx int, label string, numStart int) {
	// Walk backward over trailing digits, then backward over the label
	// letters immediately preceding them.
	i := len(rest)
	j := i
	for j > 0 && isDigit(rest[j-1]) {
		j--
	}
	if j == i {
		return -1, "", 0
	}
	k := j
	for k > 0 && isAlpha(rest[k-1]) {
		k--
	}
	if k == j {
		return -1, "", 0
	}
	label = rest[k:j]
	// Require that the pre-tag not be the whole string (there must be a
	// release segment before it), and that it be preceded by '.' or '-' or
	// directly abut digits (e.g. "1.0a1").
	if k == 0 {
		return -1, "", 0
	}
	start := k
	if rest[k-1] == '.' || rest[k-1] == '-' {
		start = k - 1
	}
	return start, label, j
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

// String renders the version in canonical form.
func (v Version) String() string {
	var b strings.Builder
	for i, n := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Label, v.Pre.N)
	}
	if v.Post != nil {
		fmt.Fprintf(&b, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&b, ".dev%d", *v.Dev)
	}
	if len(v.Local) > 0 {
		b.WriteByte('+')
		b.WriteString(strings.Join(v.Local, "."))
	}
	return b.String()
}

// IsPrerelease reports whether v carries a pre-release or dev segment.
// Post-releases of an otherwise-final version are not themselves
// pre-releases.
func (v Version) IsPrerelease() bool {
	return v.Pre != nil || (v.Dev != nil && v.Post == nil && v.Pre == nil)
}

// phaseRank orders the four release phases: dev-only releases sort below
// pre-releases, which sort below the plain final release, which sorts below
// post-releases.
func (v Version) phaseRank() int {
	switch {
	case v.Pre != nil:
		return 1
	case v.Post != nil:
		return 3
	case v.Dev != nil:
		return 0
	default:
		return 2
	}
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than
// b, per the release/pre/post/dev/local ordering described on Version.
func Compare(a, b Version) int {
	if c := compareIntSlices(a.Release, b.Release); c != 0 {
		return c
	}
	if c := cmpInt(a.phaseRank(), b.phaseRank()); c != 0 {
		return c
	}

	switch a.phaseRank() {
	case 0: // dev-only
		if c := cmpInt(*a.Dev, *b.Dev); c != 0 {
			return c
		}
	case 1: // pre-release, optionally with its own post and dev suffixes
		if c := cmpInt(preLabelRank[a.Pre.Label], preLabelRank[b.Pre.Label]); c != 0 {
			return c
		}
		if c := cmpInt(a.Pre.N, b.Pre.N); c != 0 {
			return c
		}
		if a.Post == nil && b.Post != nil {
			return -1
		}
		if a.Post != nil && b.Post == nil {
			return 1
		}
		if a.Post != nil {
			if c := cmpInt(*a.Post, *b.Post); c != 0 {
				return c
			}
		}
		if c := compareDevSuffix(a.Dev, b.Dev); c != 0 {
			return c
		}
	case 3: // post-release, optionally with its own dev suffix
		if c := cmpInt(*a.Post, *b.Post); c != 0 {
			return c
		}
		if c := compareDevSuffix(a.Dev, b.Dev); c != 0 {
			return c
		}
	}

	return compareLocal(a.Local, b.Local)
}

// compareDevSuffix orders a bare phase above the same phase with a dev
// suffix (e.g. "1.0a2" > "1.0a2.dev1"), and two dev suffixes by number.
func compareDevSuffix(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmpInt(*a, *b)
	}
}

func compareIntSlices(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := cmpInt(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

func compareLocal(a, b []string) int {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) == 0 {
		return -1
	}
	if len(b) == 0 {
		return 1
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		an, aerr := strconv.Atoi(a[i])
		bn, berr := strconv.Atoi(b[i])
		switch {
		case aerr == nil && berr == nil:
			if c := cmpInt(an, bn); c != 0 {
				return c
			}
		case aerr == nil:
			// numeric segments sort after alphanumeric ones at the same position
			return 1
		case berr == nil:
			return -1
		default:
			if a[i] != b[i] {
				if a[i] < b[i] {
					return -1
				}
				return 1
			}
		}
	}
	return cmpInt(len(a), len(b))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports syntactic equality after normalization (i.e. equal sort
// position and equal local segment).
func (v Version) Equal(o Version) bool {
	return Compare(v, o) == 0
}
