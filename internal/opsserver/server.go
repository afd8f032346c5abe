// Package opsserver exposes /health and /metrics for the aggregator process.
package opsserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// JobStatus is the last outcome of a scheduled job.
type JobStatus struct {
	LastRun    time.Time `json:"last_run"`
	LastStatus string    `json:"last_status"`
	LastError  string    `json:"last_error,omitempty"`
}

// Health tracks job outcomes reported by the scheduler.
type Health struct {
	mu   sync.RWMutex
	jobs map[string]JobStatus
}

// NewHealth creates an empty Health.
func NewHealth() *Health {
	return &Health{jobs: make(map[string]JobStatus)}
}

// Report records the outcome of a job run.
func (h *Health) Report(job, status string, err error, at time.Time) {
	s := JobStatus{LastRun: at.UTC(), LastStatus: status}
	if err != nil {
		s.LastError = err.Error()
	}
	h.mu.Lock()
	h.jobs[job] = s
	h.mu.Unlock()
}

// Snapshot returns a copy of all job statuses.
func (h *Health) Snapshot() map[string]JobStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]JobStatus, len(h.jobs))
	for k, v := range h.jobs {
		out[k] = v
	}
	return out
}

// Options configures the ops server.
type Options struct {
	Addr    string
	Metrics http.Handler
	Health  *Health
	Logger  *zap.Logger
}

// Server is the ops HTTP server.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// New creates the server. Routes are available through Handler before Start.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Health == nil {
		opts.Health = NewHealth()
	}
	return &Server{
		http: &http.Server{
			Addr:         opts.Addr,
			Handler:      NewRouter(opts.Health, opts.Metrics),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: opts.Logger,
	}
}

// NewRouter builds the ops routes.
func NewRouter(health *Health, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"jobs":   health.Snapshot(),
		})
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves in a goroutine. Listen errors are logged.
func (s *Server) Start() {
	go func() {
		s.logger.Info("ops server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ops server error", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
