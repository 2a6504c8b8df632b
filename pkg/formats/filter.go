package formats

import "strings"

// Contains reports whether expr occurs in the package identifier or in any of
// the vulnerability's type, ID or URL.
func (m Match) Contains(expr string) bool {
	return strings.Contains(m.Package.Identifier(), expr) ||
		strings.Contains(m.Vulnerability.Type, expr) ||
		strings.Contains(m.Vulnerability.ID, expr) ||
		strings.Contains(m.Vulnerability.URL, expr)
}

// Filter returns a copy of n holding only the matches that contain expr. An
// empty expression keeps everything.
func (n Normalized) Filter(expr string) Normalized {
	if expr == "" {
		return n
	}

	matches := make([]Match, 0, len(n.Matches))
	for _, m := range n.Matches {
		if m.Contains(expr) {
			matches = append(matches, m)
		}
	}

	n.Matches = matches
	return n
}
