// Package api exposes the Stremio addon HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/catalog"
	"github.com/radamhu/stremio-musortv/internal/metrics"
	"github.com/radamhu/stremio-musortv/internal/musor"
	"github.com/radamhu/stremio-musortv/internal/streams"
)

// Catalogs once rendered may take the rate window plus a full scrape to
// build, so the handler timeout has to cover both.
const handlerTimeout = 3 * time.Minute

// HealthReporter is the orchestrator surface the health endpoint reads.
type HealthReporter interface {
	Status() musor.HealthSnapshot
}

// Server wires HTTP handlers to the catalog service and stream resolver.
type Server struct {
	router  chi.Router
	catalog *catalog.Service
	streams *streams.Resolver
	health  HealthReporter
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes. health may be
// nil while the scraper is still starting up.
func NewServer(
	catalogSvc *catalog.Service,
	resolver *streams.Resolver,
	health HealthReporter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog: catalogSvc,
		streams: resolver,
		health:  health,
		logger:  logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(corsMiddleware)
	r.Use(timeoutMiddleware(handlerTimeout))

	r.Get("/", s.root)
	r.Get("/manifest.json", s.manifest)
	r.Get("/catalog/{type}/{id}.json", s.catalogHandler)
	r.Get("/catalog/{type}/{id}/{extra}.json", s.catalogHandler)
	r.Get("/meta/{type}/{id}.json", s.metaHandler)
	r.Get("/stream/{type}/{id}.json", s.streamHandler)
	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", metrics.Handler())

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/manifest.json", http.StatusFound)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	var snap musor.HealthSnapshot
	if s.health != nil {
		snap = s.health.Status()
	}
	status := http.StatusOK
	if !snap.Healthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, snap)
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)
		metrics.ObserveRequest(r.Method, strconv.Itoa(ww.status), elapsed)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", elapsed.Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Stremio's web player calls addons cross-origin, so every response has to
// allow any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
