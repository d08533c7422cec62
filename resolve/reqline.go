package resolve

import "strings"

// ParseRequirementLine parses one PEP 508-shaped dependency declaration:
//
//	name[extra1,extra2] (>=1.0,<2.0); marker-expression
//
// The parenthesized range and the marker clause are both optional; the
// range may also appear unparenthesized, as pip's requirements-text format
// writes it. This is the single shared line grammar behind both the
// index-metadata Repository (requires_dist strings) and the requirements-
// text Converter, so the two never drift out of sync on what counts as a
// valid declaration.
func ParseRequirementLine(line string) (DeclaredDependency, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return DeclaredDependency{}, &ParseError{Kind: "requirement", Input: line, Reason: "empty line"}
	}

	var marker string
	if idx := strings.Index(s, ";"); idx >= 0 {
		marker = strings.TrimSpace(s[idx+1:])
		s = strings.TrimSpace(s[:idx])
	}

	name, extras, rangeText := s, []string(nil), ""

	if idx := strings.IndexByte(s, '['); idx >= 0 {
		end := strings.IndexByte(s, ']')
		if end < idx {
			return DeclaredDependency{}, &ParseError{Kind: "requirement", Input: line, Reason: "unterminated extras list"}
		}
		name = strings.TrimSpace(s[:idx])
		for _, e := range strings.Split(s[idx+1:end], ",") {
			e = strings.TrimSpace(e)
			if e != "" {
				extras = append(extras, e)
			}
		}
		rest := strings.TrimSpace(s[end+1:])
		name, rangeText = splitNameAndRange(name, rest)
	} else {
		name, rangeText = splitNameAndRange("", s)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return DeclaredDependency{}, &ParseError{Kind: "requirement", Input: line, Reason: "missing package name"}
	}

	rangeText = strings.TrimSpace(rangeText)
	rangeText = strings.TrimPrefix(rangeText, "(")
	rangeText = strings.TrimSuffix(rangeText, ")")

	rng, err := ParseRange(rangeText)
	if err != nil {
		return DeclaredDependency{}, err
	}

	return DeclaredDependency{Name: name, Range: rng, Extras: extras, Marker: marker}, nil
}

// splitNameAndRange handles the case where no '[' extras marker was found:
// the whole string is "name" followed directly (no separator required) by
// the version-spec clauses, e.g. "requests>=2.0,<3.0" or "requests (>=2.0)".
func splitNameAndRange(name, rest string) (string, string) {
	if name == "" {
		name = rest
		rest = ""
	}
	name = strings.TrimSpace(name)
	if rest != "" {
		return name, rest
	}

	for i, r := range name {
		if strings.ContainsRune("<>=!~( ", r) {
			return name[:i], name[i:]
		}
	}
	return name, ""
}
