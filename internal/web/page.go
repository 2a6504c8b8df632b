package web

import (
	"html/template"
	"io"

	"github.com/yvc-project/yvcweb/pkg/formats"
)

// Page is everything the HTML view needs for one response.
type Page struct {
	// FormPath is where the blank form lives; the back link points here.
	// Standalone reports leave it empty and get no back link.
	FormPath string
	// ShowForm renders the input form instead of a result section.
	ShowForm bool
	// Checked is false when the checker could not be started, which
	// suppresses the result section entirely.
	Checked bool
	Matches []formats.Match
}

// pageTemplate escapes every field that came from the checker. A reference
// URL with a scheme other than http(s) or mailto is replaced by
// html/template with "#ZgotmplZ".
const pageTemplate = `<html>
  <head>
    <title>yvc -- check packages against known vulnerabilities</title>
  </head>
  <body>

  <h2>YVC Web Interface</h2>
  <hr>
{{if .ShowForm}}
  Enter package-version names (for example <em>perl-5.8.5_13</em>), one per line.<br>
  <form method="GET" name="yvc" action="{{.FormPath}}">
  <textarea cols="50" rows="10" name="packages"></textarea><br><br>
  <input type="submit" value="Check packages">
  </form>
{{- else}}
{{- if .Checked}}
{{- if .Matches}}
  <h3>Vulnerable packages:</h3>
  <ul>
{{- range .Matches}}
    <li><b>{{.Package.Identifier}}</b> has a <em>{{.Vulnerability.Type}}</em> vulnerability, see <a href="{{.Vulnerability.URL}}">{{.Vulnerability.URL}}</a></li>
{{- end}}
  </ul>
{{- else}}
  No vulnerabilities found.
{{- end}}
{{- end}}
{{- if .FormPath}}
  <hr>
  <a href="{{.FormPath}}">Back to check more packages</a>
{{- end}}
{{- end}}
  <hr>
  [<a href="http://www.netmeister.org/apps/yvc/">About yvc</a>]
  </body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// Render writes p as a complete HTML document.
func Render(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}
