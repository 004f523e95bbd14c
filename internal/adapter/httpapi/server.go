// Package httpapi exposes the evaluation engine over HTTP: backtest runs,
// threshold sweeps, storm event extraction, the major-storm catalog, and
// regional profiles, plus the usual health/readiness/metrics routes.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ionoscope/storm-eval-service/internal/domain"
	"github.com/ionoscope/storm-eval-service/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SampleSource provides the accumulated measurement series that backtests
// and extraction queries run against.
type SampleSource interface {
	Range(start, end time.Time) []domain.Measurement
	All() []domain.Measurement
}

// Server exposes the evaluation API plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	source     SampleSource
	extCfg     domain.ExtractionConfig
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, ready ReadinessChecker, source SampleSource,
	extCfg domain.ExtractionConfig, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:  source,
		extCfg:  extCfg,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /backtest/run", s.handleBacktestRun)
	mux.HandleFunc("POST /backtest/optimize", s.handleBacktestOptimize)
	mux.HandleFunc("GET /backtest/storm-events", s.handleStormEvents)
	mux.HandleFunc("GET /storms/catalog", s.handleCatalog)
	mux.HandleFunc("GET /regions", s.handleRegions)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
