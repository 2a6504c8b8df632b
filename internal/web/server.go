package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yvc-project/yvcweb/internal/metrics"
	"github.com/yvc-project/yvcweb/pkg/checker"
	"github.com/yvc-project/yvcweb/pkg/formats/yvctext"
)

// QueryParameter carries the free-text package list.
const QueryParameter = "packages"

// Server is the yvc web front end.
type Server struct {
	checker     checker.Checker
	metrics     *metrics.Metrics
	metricsPath string
}

type Option func(*Server)

// WithMetrics records request and checker metrics in m and, when path is not
// empty, serves them there.
func WithMetrics(m *metrics.Metrics, path string) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsPath = path
	}
}

// NewServer creates a server that runs c once per non-empty request.
func NewServer(c checker.Checker, opts ...Option) *Server {
	s := &Server{checker: c}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the HTTP handler serving the form, the results, and
// metrics if configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)

	if s.metrics == nil {
		return mux
	}

	if s.metricsPath != "" {
		mux.Handle(s.metricsPath, s.metrics.Handler())
	}

	return s.metrics.RequestTrackingMiddleware(mux)
}

// ListenAndServe serves Handler on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting yvc web interface at http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down yvc web interface")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	page := s.Check(r.Context(), r.URL.Query().Get(QueryParameter))
	page.FormPath = r.URL.Path

	var buf bytes.Buffer
	if err := Render(&buf, page); err != nil {
		logrus.WithError(err).Error("rendering page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logrus.WithError(err).Debug("writing response")
	}
}

// Check runs the checker for the raw package list and builds the page to
// render. Empty input yields the form without running anything.
func (s *Server) Check(ctx context.Context, raw string) Page {
	query := checker.ParseQuery(raw)
	if len(query) == 0 {
		return Page{ShowForm: true}
	}

	log := logrus.WithField("packages", len(query))

	start := time.Now()
	out, err := s.checker.Check(ctx, query)
	elapsed := time.Since(start)

	if errors.Is(err, checker.ErrStart) {
		log.WithError(err).Warn("checker could not be started, skipping results")
		s.observe(metrics.ResultStartFailed, elapsed, 0)
		return Page{}
	}

	result := ""
	if err != nil {
		log.WithError(err).Warn("checker failed, rendering partial output")
		result = metrics.ResultError
	}

	parsed, err := yvctext.Parse(bytes.NewReader(out))
	if err != nil {
		log.WithError(err).Warn("reading checker output")
		result = metrics.ResultError
	}

	matches := parsed.Normalized().Matches
	if result == "" {
		result = metrics.ResultClean
		if len(matches) > 0 {
			result = metrics.ResultVulnerable
		}
	}

	log.WithFields(logrus.Fields{
		"vulnerabilities": len(matches),
		"duration":        elapsed,
	}).Info("checked packages")
	s.observe(result, elapsed, len(matches))

	return Page{Checked: true, Matches: matches}
}

func (s *Server) observe(result string, d time.Duration, vulnerabilities int) {
	if s.metrics == nil {
		return
	}

	s.metrics.ObserveCheck(result, d, vulnerabilities)
}
