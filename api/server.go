// Package api provides the HTTP REST API server for finlookup.
//
// It exposes the company lookup endpoints, the company directory,
// health and prometheus metrics, and a read-only view of the running
// configuration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/seenimoa/finlookup/internal/config"
	"github.com/seenimoa/finlookup/internal/lookup"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	svc      *lookup.Service
	gatherer prometheus.Gatherer
	log      zerolog.Logger
	version  string
	started  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access logs and handler errors.
func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.log = l } }

// WithGatherer serves g at /metrics. Without it /metrics is not mounted.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option { return func(s *Server) { s.version = v } }

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, svc *lookup.Service, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	srv := &Server{
		cfg:     cfg,
		svc:     svc,
		log:     zerolog.Nop(),
		version: "dev",
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully once
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.cfg.API.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", httpSrv.Addr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("Server stopped")
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-ID"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	if s.cfg.API.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.API.RequestTimeout))
	}

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/finance", s.handleFinance)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Lookups
		r.Get("/finance", s.handleFinance)
		r.Get("/finance/{ticker}", s.handleFinanceTicker)

		// Directory
		r.Get("/companies", s.handleCompanies)

		// Configuration (read-only)
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Companies int    `json:"companies"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	}
	if s.svc != nil {
		resp.Companies = s.svc.Directory().Len()
	}
	writeJSON(w, r, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleFinance serves GET /finance?company=<name>|ticker=<sym>.
func (s *Server) handleFinance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.serveLookup(w, r, lookup.Request{
		Company: q.Get("company"),
		Ticker:  q.Get("ticker"),
		Years:   lookup.ParseYears(q.Get("years")),
		Period:  q.Get("period"),
	})
}

// handleFinanceTicker serves GET /api/v1/finance/{ticker}.
func (s *Server) handleFinanceTicker(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.serveLookup(w, r, lookup.Request{
		Ticker: chi.URLParam(r, "ticker"),
		Years:  lookup.ParseYears(q.Get("years")),
		Period: q.Get("period"),
	})
}

func (s *Server) serveLookup(w http.ResponseWriter, r *http.Request, req lookup.Request) {
	snap, err := s.svc.Lookup(r.Context(), req)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			hlog.FromRequest(r).Error().Err(err).Msg("lookup failed")
		}
		writeError(w, r, status, msg)
		return
	}
	writeJSON(w, r, http.StatusOK, APIResponse{Success: true, Data: snap})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.svc.Directory().Entries(),
	})
}

// errorStatus maps a lookup error to an HTTP status and client message.
func errorStatus(err error) (int, string) {
	var (
		nf *lookup.NotFoundError
		re *lookup.RequestError
	)
	switch {
	case errors.As(err, &nf):
		return http.StatusBadRequest, lookup.NotFoundMessage
	case errors.Is(err, lookup.ErrMissingQuery):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &re):
		return http.StatusBadRequest, re.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

// writeJSON encodes v as the response body. Encode failures go to the
// request logger installed by hlog.NewHandler.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
