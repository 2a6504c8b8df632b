// Package sarif exports a normalized report as SARIF 2.1.0 so it can be
// uploaded to code scanning dashboards.
package sarif

import (
	"fmt"
	"io"

	gosarif "github.com/owenrumney/go-sarif/sarif"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

const (
	toolName       = "yvc"
	informationURI = "http://www.netmeister.org/apps/yvc/"
)

// Report builds the SARIF report for n: one rule per distinct vulnerability
// and one result per vulnerable package.
func Report(n formats.Normalized) (*gosarif.Report, error) {
	report, err := gosarif.New(gosarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("creating SARIF report: %w", err)
	}

	run := gosarif.NewRun(toolName, informationURI)

	for _, m := range n.Matches {
		ruleID := m.Vulnerability.Name()

		rule := run.AddRule(ruleID).
			WithDescription(fmt.Sprintf("%s vulnerability", m.Vulnerability.Type))
		if m.Vulnerability.URL != "" {
			rule.WithHelpURI(m.Vulnerability.URL)
		}

		run.AddResult(ruleID).
			WithLevel(level(m.Vulnerability.Severity)).
			WithMessage(gosarif.NewTextMessage(message(m)))
	}

	report.AddRun(run)
	return report, nil
}

func message(m formats.Match) string {
	msg := fmt.Sprintf("Package %s has a %s vulnerability", m.Package.Identifier(), m.Vulnerability.Type)
	if m.Vulnerability.URL != "" {
		msg += ", see " + m.Vulnerability.URL
	}

	return msg
}

// level maps a severity to a SARIF level. yvc reports no severity; anything
// it flags is treated as an error.
func level(severity string) string {
	switch severity {
	case "Negligible", "Low", "low":
		return "note"
	case "Medium", "medium":
		return "warning"
	default:
		return "error"
	}
}

// Write encodes the SARIF report for n to w.
func Write(w io.Writer, n formats.Normalized) error {
	report, err := Report(n)
	if err != nil {
		return err
	}

	return report.PrettyWrite(w)
}
