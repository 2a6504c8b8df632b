package grypejson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/anchore/grype/grype/presenter/models"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

// Format is a Grype JSON report. It lets a Grype scan be triaged and
// exported through the same paths as yvc output.
type Format struct {
	wrapped models.Document
}

func Parse(input io.Reader) (Format, error) {
	d := new(models.Document)
	if err := json.NewDecoder(input).Decode(d); err != nil {
		return Format{}, fmt.Errorf("unable to parse Grype JSON data: %w", err)
	}

	return Format{wrapped: *d}, nil
}

func (f Format) Normalized() formats.Normalized {
	matches := make([]formats.Match, 0, len(f.wrapped.Matches))
	for _, m := range f.wrapped.Matches {
		matches = append(matches, normalizeMatch(m))
	}

	source := "grype"
	if distro := f.wrapped.Distro.Name; distro != "" {
		source += " (" + distro + ")"
	}

	return formats.Normalized{
		Matches: matches,
		Source:  source,
	}
}

func normalizeMatch(m models.Match) formats.Match {
	return formats.Match{
		Package: formats.Package{
			Name:              m.Artifact.Name,
			Version:           m.Artifact.Version,
			Type:              string(m.Artifact.Type),
			OriginPackageName: originPackageName(m.Artifact),
			Locations:         packageLocations(m.Artifact),
		},
		Vulnerability: formats.Vulnerability{
			ID:          m.Vulnerability.ID,
			Type:        m.Vulnerability.ID,
			Severity:    m.Vulnerability.Severity,
			URL:         referenceURL(m.Vulnerability),
			Description: m.Vulnerability.Description,
		},
	}
}

// referenceURL prefers the advisory's data source and falls back to its
// first listed URL.
func referenceURL(v models.Vulnerability) string {
	if v.DataSource != "" {
		return v.DataSource
	}
	if len(v.URLs) > 0 {
		return v.URLs[0]
	}

	return ""
}

func originPackageName(p models.Package) string {
	if len(p.Upstreams) >= 1 {
		return p.Upstreams[0].Name
	}

	return ""
}

func packageLocations(p models.Package) []string {
	locations := make([]string, 0, len(p.Locations))
	for _, l := range p.Locations {
		locations = append(locations, l.RealPath)
	}

	return locations
}
