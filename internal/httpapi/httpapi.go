// Package httpapi is the external HTTP collaborator of §6: it serves the
// book snapshot and a Prometheus scrape endpoint, each when enabled. It is
// explicitly out of the matching core (§1) — it only ever reads an
// immutable orderbook.BookView published by the engine, never the live
// Book, so it never takes a lock against the engine's fast path.
//
// Grounded in gorilla/mux routing as used across the retrieved pack
// (e.g. other_examples/limitless, DimaJoyti-ai-agentic-crypto-browser).
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"limitbook/internal/metrics"
	"limitbook/internal/orderbook"
)

// SnapshotSource is satisfied by engine.Loop; kept as an interface so this
// package never imports the engine package's concrete type.
type SnapshotSource interface {
	Snapshot() orderbook.BookView
}

// Server hosts the snapshot and metrics HTTP routes.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// New builds the HTTP server. snapshotEnabled/metricsEnabled gate their
// respective routes per spec.md §6's snapshot_enabled configuration
// parameter and this expansion's metrics_enabled addition.
func New(bindAddress string, source SnapshotSource, m *metrics.Metrics, snapshotEnabled, metricsEnabled bool, log zerolog.Logger) *Server {
	router := mux.NewRouter()

	if snapshotEnabled {
		router.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
			view := source.Snapshot()
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(view); err != nil {
				log.Error().Err(err).Msg("failed to encode snapshot")
			}
		}).Methods(http.MethodGet)
	}

	if metricsEnabled && m != nil {
		router.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return &Server{
		http: &http.Server{
			Addr:         bindAddress,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start begins serving in the background. It returns immediately; a
// listen failure is reported asynchronously via the logger, mirroring
// the teacher's fire-and-forget server bring-up style.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("http observability surface listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("http server stopped unexpectedly")
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
