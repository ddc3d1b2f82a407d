package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/pipeline"
	"github.com/couchcryptid/quake-report/internal/presenter"
)

// FeedSource is the loader surface the server reads from and triggers.
type FeedSource interface {
	sharedobs.ReadinessChecker
	Latest() (domain.Result, bool)
	Refresh(ctx context.Context) error
}

// Server exposes probes, metrics, and the latest earthquake rows over HTTP.
type Server struct {
	httpServer *http.Server
	feed       FeedSource
	presenter  *presenter.Presenter
	logger     *slog.Logger
}

type earthquakesResponse struct {
	FetchedAt  time.Time       `json:"fetched_at"`
	EmptyState string          `json:"empty_state,omitempty"`
	Rows       []presenter.Row `json:"rows"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /earthquakes, and /refresh routes.
func NewServer(addr string, feed FeedSource, p *presenter.Presenter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		feed:      feed,
		presenter: p,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(feed))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /earthquakes", s.handleEarthquakes)
	mux.HandleFunc("POST /refresh", s.handleRefresh)

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

func (s *Server) handleEarthquakes(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.feed.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "loading",
			"error":  "no earthquake load has completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, earthquakesResponse{
		FetchedAt:  result.FetchedAt,
		EmptyState: result.EmptyState(),
		Rows:       s.presenter.FormatRows(result.Earthquakes, nil),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.feed.Refresh(r.Context())
	switch {
	case errors.Is(err, pipeline.ErrFetchInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{
			"status": "in progress",
			"error":  err.Error(),
		})
	case err != nil:
		s.logger.Error("refresh failed to start", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
