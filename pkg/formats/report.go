package formats

// Normalized is a scan result reduced to what yvcweb renders, regardless of
// which tool produced it.
type Normalized struct {
	Matches []Match `json:"matches"`
	Source  string  `json:"source"`
}

type Match struct {
	Package       Package       `json:"package"`
	Vulnerability Vulnerability `json:"vulnerability"`
}

// Package is the package-version identifier the checker reported on. yvc
// reports the identifier as it was given, so Version is often empty.
type Package struct {
	Name              string   `json:"name"`
	Version           string   `json:"version,omitempty"`
	Type              string   `json:"type,omitempty"`
	OriginPackageName string   `json:"origin,omitempty"`
	Locations         []string `json:"locations,omitempty"`
}

type Vulnerability struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	Severity    string `json:"severity,omitempty"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Name identifies the vulnerability: its ID when the source has one,
// otherwise the reference URL.
func (v Vulnerability) Name() string {
	if v.ID != "" {
		return v.ID
	}

	return v.URL
}

// Identifier returns the package-version string for the package.
func (p Package) Identifier() string {
	if p.Version == "" {
		return p.Name
	}

	return p.Name + "-" + p.Version
}

type Format interface {
	Normalized() Normalized
}
