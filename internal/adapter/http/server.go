package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/metadata"
)

// Server exposes health, metrics, and run-metadata HTTP endpoints for a
// pipeline process.
type Server struct {
	httpServer *http.Server
	recorder   *metadata.Recorder
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /metrics, and
// /runs/{stage} routes.
func NewServer(addr string, recorder *metadata.Recorder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		recorder: recorder,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /runs/{stage}", s.handleRun)
	mux.Handle("GET /metrics", promhttp.Handler())

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

// handleRun serves the metadata record for one stage run:
// GET /runs/{stage}?date=YYYYMMDD.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	stage := domain.Stage(r.PathValue("stage"))
	if !domain.KnownStage(stage) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown stage"})
		return
	}
	date := r.URL.Query().Get("date")
	if !artifact.ValidDate(date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYYMMDD"})
		return
	}

	md, err := s.recorder.Read(artifact.Reference(stage, date))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
