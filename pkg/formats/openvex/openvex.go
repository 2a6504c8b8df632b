// Package openvex exports a normalized report as an OpenVEX document with
// one "affected" statement per vulnerable package.
package openvex

import (
	"fmt"
	"io"

	"github.com/openvex/go-vex/pkg/vex"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

const defaultActionStatement = "Upgrade the package to a version not listed by yvc."

type Options struct {
	Author          string
	ActionStatement string
}

// Document builds the VEX document for n.
func Document(n formats.Normalized, opts Options) (vex.VEX, error) {
	doc := vex.New()
	if opts.Author != "" {
		doc.Author = opts.Author
	}
	doc.Tooling = "yvcweb (" + n.Source + ")"

	action := opts.ActionStatement
	if action == "" {
		action = defaultActionStatement
	}

	for _, m := range n.Matches {
		doc.Statements = append(doc.Statements, vex.Statement{
			Vulnerability: vex.Vulnerability{
				Name:        vex.VulnerabilityID(m.Vulnerability.Name()),
				Description: m.Vulnerability.Description,
			},
			Products: []vex.Product{
				{Component: vex.Component{ID: m.Package.Identifier()}},
			},
			Status:          vex.StatusAffected,
			StatusNotes:     statusNotes(m),
			ActionStatement: action,
		})
	}

	// Hashing sorts the statements in place; keep the checker's order.
	hashed := doc
	hashed.Statements = append([]vex.Statement(nil), doc.Statements...)
	id, err := hashed.GenerateCanonicalID()
	if err != nil {
		return vex.VEX{}, fmt.Errorf("generating VEX document ID: %w", err)
	}
	doc.ID = id

	return doc, nil
}

func statusNotes(m formats.Match) string {
	notes := fmt.Sprintf("%s vulnerability", m.Vulnerability.Type)
	if m.Vulnerability.URL != "" {
		notes += ", see " + m.Vulnerability.URL
	}

	return notes
}

// Write encodes the VEX document for n to w as JSON.
func Write(w io.Writer, n formats.Normalized, opts Options) error {
	doc, err := Document(n, opts)
	if err != nil {
		return err
	}

	if err := doc.ToJSON(w); err != nil {
		return fmt.Errorf("writing VEX document: %w", err)
	}

	return nil
}
