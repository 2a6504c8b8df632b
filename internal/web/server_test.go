package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yvc-project/yvcweb/internal/metrics"
	"github.com/yvc-project/yvcweb/pkg/checker"
)

type fakeChecker struct {
	output string
	err    error

	calls []checker.Query
}

func (f *fakeChecker) Check(_ context.Context, q checker.Query) ([]byte, error) {
	f.calls = append(f.calls, q)
	return []byte(f.output), f.err
}

func get(t *testing.T, h http.Handler, packages *string) *httptest.ResponseRecorder {
	t.Helper()

	target := "/yvc"
	if packages != nil {
		target += "?" + url.Values{QueryParameter: {*packages}}.Encode()
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func ptr(s string) *string {
	return &s
}

func TestServer_Form(t *testing.T) {
	tests := []struct {
		name     string
		packages *string
	}{
		{name: "absent"},
		{name: "empty", packages: ptr("")},
		{name: "whitespace only", packages: ptr(" \r\n\t")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeChecker{}
			w := get(t, NewServer(fc).Handler(), tt.packages)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

			body := w.Body.String()
			assert.Contains(t, body, `<textarea cols="50" rows="10" name="packages">`)
			assert.Contains(t, body, `action="/yvc"`)
			assert.NotContains(t, body, "Vulnerable packages:")
			assert.NotContains(t, body, "No vulnerabilities found.")
			assert.NotContains(t, body, "Back to check more packages")
			assert.Empty(t, fc.calls, "checker must not run for empty input")
		})
	}
}

func TestServer_Results(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		wantItems []string
	}{
		{
			name:   "no record lines",
			output: "Checking package 'bash-4.0'...\n\n",
		},
		{
			name:   "single record",
			output: "x perl-5.8.5_13 x x CVE-XXXX x x http://example.com/ref\n",
			wantItems: []string{
				`<li><b>perl-5.8.5_13</b> has a <em>CVE-XXXX</em> vulnerability, see <a href="http://example.com/ref">http://example.com/ref</a></li>`,
			},
		},
		{
			name: "records mixed with other lines",
			output: strings.Join([]string{
				"Package perl-5.8.5_13 has a remote-code-execution vulnerability, see: http://example.com/perl",
				"Package openssl-0.9.8 has a CVE-2014-0160 high vulnerability, see: http://example.com/ignored",
				"Package openssl-0.9.8 has a CVE-2014-0160 vulnerability, see: http://example.com/heartbleed",
				"",
			}, "\n"),
			wantItems: []string{
				`<li><b>perl-5.8.5_13</b> has a <em>remote-code-execution</em> vulnerability, see <a href="http://example.com/perl">http://example.com/perl</a></li>`,
				`<li><b>openssl-0.9.8</b> has a <em>CVE-2014-0160</em> vulnerability, see <a href="http://example.com/heartbleed">http://example.com/heartbleed</a></li>`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeChecker{output: tt.output}
			w := get(t, NewServer(fc).Handler(), ptr("perl-5.8.5_13\n\n  openssl-0.9.8"))

			require.Equal(t, http.StatusOK, w.Code)
			require.Len(t, fc.calls, 1)
			assert.Equal(t, checker.Query{"perl-5.8.5_13", "openssl-0.9.8"}, fc.calls[0])

			body := w.Body.String()
			assert.Equal(t, len(tt.wantItems), strings.Count(body, "<li>"))
			for _, item := range tt.wantItems {
				assert.Contains(t, body, item)
			}

			if len(tt.wantItems) == 0 {
				assert.Contains(t, body, "No vulnerabilities found.")
				assert.NotContains(t, body, "<ul>")
			} else {
				assert.Equal(t, 1, strings.Count(body, "<h3>Vulnerable packages:</h3>"))
				assert.NotContains(t, body, "No vulnerabilities found.")
				assert.NotContains(t, body, "http://example.com/ignored")
			}

			assert.Contains(t, body, `<a href="/yvc">Back to check more packages</a>`)
			assert.NotContains(t, body, "<textarea")
		})
	}
}

func TestServer_StartFailure(t *testing.T) {
	fc := &fakeChecker{err: fmt.Errorf("%w yvc: exec: not found", checker.ErrStart)}
	w := get(t, NewServer(fc).Handler(), ptr("perl-5.8.5_13"))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Back to check more packages")
	assert.NotContains(t, body, "<ul>")
	assert.NotContains(t, body, "No vulnerabilities found.")
	assert.NotContains(t, body, "unable to start checker")
}

func TestServer_StartFailure_RealCommand(t *testing.T) {
	c := checker.Command{Path: "/nonexistent/yvc"}
	w := get(t, NewServer(c).Handler(), ptr("perl-5.8.5_13"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Back to check more packages")
	assert.NotContains(t, w.Body.String(), "<li>")
}

func TestServer_PartialOutput(t *testing.T) {
	fc := &fakeChecker{
		output: "Package perl-5.8.5_13 has a CVE-1 vulnerability, see: http://example.com/perl\n",
		err:    fmt.Errorf("checker did not finish: %w", context.DeadlineExceeded),
	}
	w := get(t, NewServer(fc).Handler(), ptr("perl-5.8.5_13 bash-4.0"))

	body := w.Body.String()
	assert.Contains(t, body, "<b>perl-5.8.5_13</b>")
	assert.Contains(t, body, "Back to check more packages")
}

func TestServer_EscapesCheckerOutput(t *testing.T) {
	fc := &fakeChecker{
		output: `Package <script>alert(1)</script> has a "><img vulnerability, see: javascript:alert(1)` + "\n",
	}
	w := get(t, NewServer(fc).Handler(), ptr("x"))

	body := w.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, `"><img`)
	assert.NotContains(t, body, `href="javascript:`)
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, body, "#ZgotmplZ")
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("connection reset")
}

func TestServer_WriteFailure(t *testing.T) {
	fc := &fakeChecker{output: "Package perl-5.8.5_13 has a x vulnerability, see: http://example.com\n"}
	w := failingWriter{httptest.NewRecorder()}

	assert.NotPanics(t, func() {
		NewServer(fc).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?packages=perl-5.8.5_13", nil))
	})
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Len(t, fc.calls, 1)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	fc := &fakeChecker{}
	w := httptest.NewRecorder()
	NewServer(fc).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/?packages=x", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
	assert.Empty(t, fc.calls)
}

func TestServer_Metrics(t *testing.T) {
	m := metrics.New()
	fc := &fakeChecker{output: "x perl-5.8.5_13 x x CVE-XXXX x x http://example.com/ref\n"}
	h := NewServer(fc, WithMetrics(m, "/metrics")).Handler()

	get(t, h, ptr("perl-5.8.5_13"))
	get(t, h, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChecksTotal.WithLabelValues(metrics.ResultVulnerable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VulnerabilitiesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "200")))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yvcweb_vulnerabilities_reported_total 1")

	count, err := testutil.GatherAndCount(m.Gatherer(), "yvcweb_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestServer_ListenAndServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServer(&fakeChecker{}).ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()
	assert.NoError(t, <-done)
}
