package yvctext

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/yvc-project/yvcweb/pkg/formats"
)

// recordFields is the field count of a yvc match line:
//
//	Package perl-5.8.5_13 has a CVE-2007-5116 vulnerability, see: http://...
const recordFields = 8

// Record is one vulnerability reported by yvc.
type Record struct {
	Package string
	Type    string
	URL     string
}

type Format struct {
	records []Record
}

// ParseRecord splits line on whitespace and builds a Record when it has
// exactly eight fields. Anything else (blank lines, lines carrying a
// severity column, diagnostics) is not a record.
func ParseRecord(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) != recordFields {
		return Record{}, false
	}

	return Record{
		Package: fields[1],
		Type:    fields[4],
		URL:     fields[7],
	}, true
}

func Parse(input io.Reader) (Format, error) {
	var records []Record

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if r, ok := ParseRecord(scanner.Text()); ok {
			records = append(records, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return Format{records: records}, fmt.Errorf("unable to read yvc output: %w", err)
	}

	return Format{records: records}, nil
}

func (f Format) Records() []Record {
	return f.records
}

func (f Format) Normalized() formats.Normalized {
	matches := make([]formats.Match, 0, len(f.records))
	for _, r := range f.records {
		matches = append(matches, normalizeRecord(r))
	}

	return formats.Normalized{
		Matches: matches,
		Source:  "yvc",
	}
}

func normalizeRecord(r Record) formats.Match {
	return formats.Match{
		Package: formats.Package{
			Name: r.Package,
		},
		Vulnerability: formats.Vulnerability{
			Type: r.Type,
			URL:  r.URL,
		},
	}
}
