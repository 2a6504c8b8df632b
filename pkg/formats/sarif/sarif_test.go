package sarif

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

func TestWrite(t *testing.T) {
	report := formats.Normalized{
		Source: "yvc",
		Matches: []formats.Match{
			{
				Package:       formats.Package{Name: "perl-5.8.5_13"},
				Vulnerability: formats.Vulnerability{Type: "remote-code-execution", URL: "http://example.com/perl"},
			},
			{
				Package:       formats.Package{Name: "perl-5.8.6"},
				Vulnerability: formats.Vulnerability{Type: "remote-code-execution", URL: "http://example.com/perl"},
			},
			{
				Package:       formats.Package{Name: "openssl", Version: "1.0.1f"},
				Vulnerability: formats.Vulnerability{ID: "CVE-2014-0160", Type: "CVE-2014-0160", Severity: "Medium"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))

	var decoded struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name           string `json:"name"`
					InformationURI string `json:"informationUri"`
					Rules []struct {
						ID      string `json:"id"`
						HelpURI string `json:"helpUri"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID  string `json:"ruleId"`
				Level   string `json:"level"`
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "2.1.0", decoded.Version)
	require.Len(t, decoded.Runs, 1)
	run := decoded.Runs[0]
	assert.Equal(t, "yvc", run.Tool.Driver.Name)
	assert.Equal(t, "http://www.netmeister.org/apps/yvc/", run.Tool.Driver.InformationURI)

	require.Len(t, run.Tool.Driver.Rules, 2, "rules are deduplicated")
	assert.Equal(t, "http://example.com/perl", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "http://example.com/perl", run.Tool.Driver.Rules[0].HelpURI)
	assert.Equal(t, "CVE-2014-0160", run.Tool.Driver.Rules[1].ID)

	require.Len(t, run.Results, 3)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "Package perl-5.8.6 has a remote-code-execution vulnerability, see http://example.com/perl", run.Results[1].Message.Text)
	assert.Equal(t, "warning", run.Results[2].Level)
	assert.Equal(t, "CVE-2014-0160", run.Results[2].RuleID)
}
