// Package preview serves the generated prototype and the chat transcript on
// a local HTTP address so they can be opened in a browser.
//
// Routes:
//   - GET /             prototype HTML, 404 until one is generated
//   - GET /transcript   chat transcript rendered from markdown
//   - GET /state        current ProjectState as JSON, 404 without a project
//   - GET /metrics      Prometheus metrics, when a handler is configured
//   - GET /health/live  liveness probe
//   - GET /health/ready readiness probe (also /healthz)
package preview

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/health"
	"github.com/autosdlc/autosdlc/internal/log"
)

// DefaultAddress is the listen address used when none is configured.
const DefaultAddress = "127.0.0.1:7878"

// Source supplies the dashboard state to serve.
type Source interface {
	Snapshot() dashboard.Snapshot
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address. Port 0 picks a free port.
	Address string

	// AllowedOrigins are passed to the CORS handler. Empty sends no CORS
	// headers, so other origins cannot read the project.
	AllowedOrigins []string

	// Refresh is the transcript page reload period. Defaults to 2 seconds.
	Refresh time.Duration

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	Logger *log.Logger

	// Defaults: 30s shutdown, 10s read and write, 60s idle.
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// Server is the preview HTTP server.
type Server struct {
	httpServer      *http.Server
	probes          *health.ProbeManager
	source          Source
	markdown        *Markdown
	logger          *log.Logger
	refresh         int
	listener        net.Listener
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// New creates a preview server for src. probes may be nil.
func New(src Source, probes *health.ProbeManager, cfg Config) *Server {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = 2 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}
	if probes == nil {
		probes = health.NewProbeManager("")
	}

	s := &Server{
		probes:          probes,
		source:          src,
		markdown:        NewMarkdown(),
		logger:          cfg.Logger.Component("preview"),
		refresh:         max(1, int(cfg.Refresh.Round(time.Second)/time.Second)),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePrototype)
	r.Get("/transcript", s.handleTranscript)
	r.Get("/state", s.handleState)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/healthz", s.handleReadiness)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the router, for mounting in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the configured address and returns the base URL.
func (s *Server) Listen() (string, error) {
	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeListenFailed, "preview server cannot listen on "+s.httpServer.Addr, err).
			WithSuggestion("Choose another address with --addr or preview.addr")
	}
	s.listener = l
	return "http://" + l.Addr().String(), nil
}

// Serve blocks serving requests, binding first if Listen was not called.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Serve() error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}
	s.probes.MarkInitialized()
	s.logger.Info("preview server listening", "addr", s.listener.Addr().String())
	return s.httpServer.Serve(s.listener)
}

// Shutdown fails readiness, stops keep-alives and drains connections for
// at most the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probes.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown reports whether Shutdown was called.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) handlePrototype(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Snapshot()
	if !snap.ProtoReady {
		http.Error(w, "No prototype generated yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(snap.ProtoHTML))
}

func (s *Server) handleTranscript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.markdown.RenderTranscript(w, s.source.Snapshot(), s.refresh); err != nil {
		s.logger.Error("render transcript", "error", err)
		http.Error(w, "Failed to render transcript", http.StatusInternalServerError)
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Snapshot()
	if snap.Project == nil {
		http.Error(w, "No project submitted yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap.Project)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, s.probes.CheckLiveness(r.Context()), http.StatusOK)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, s.probes.CheckReadiness(r.Context()), http.StatusServiceUnavailable)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("preview request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeProbe(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = unhealthyStatus
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
