// Package server serves a built site for local preview.
package server

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/maxbolgarin/docmeta/internal/metrics"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"
)

// Server serves static files of the site dir
type Server struct {
	config  Config
	files   http.Handler
	metrics *metrics.Metrics
	log     logze.Logger
	server  *servex.Server
}

// New creates a preview server, m may be nil
func New(cfg Config, m *metrics.Metrics) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}
	if info, err := os.Stat(cfg.SiteDir); err != nil || !info.IsDir() {
		return nil, errm.New("site dir not found: %s", cfg.SiteDir)
	}
	if m == nil {
		m = metrics.New()
	}

	log := logze.With("module", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	s := &Server{
		config:  cfg,
		files:   http.FileServer(http.Dir(cfg.SiteDir)),
		metrics: m,
		log:     log,
		server:  server,
	}

	server.HandleFunc(cfg.MetricsPath, s.handleMetrics)
	server.HandleFunc("/{path:.*}", s.handleFile)

	return s, nil
}

// Start starts the server in background
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("serving site", "address", s.config.Address, "site_dir", s.config.SiteDir)
	if s.config.EnableHTTPS {
		return s.server.StartHTTPS(s.config.Address)
	}
	return s.server.StartHTTP(s.config.Address)
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	s.files.ServeHTTP(rec, r)
	s.metrics.PreviewRequestsTotal.WithLabelValues(strconv.Itoa(rec.code)).Inc()
	s.log.DebugIf(rec.code >= http.StatusBadRequest, "file not served", "path", r.URL.Path, "code", rec.code)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.Handler().ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
