// Package api exposes similarity scoring and alternative-class ranking over
// HTTP and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-classmatch/internal/content"
	"github.com/p-n-ai/pai-classmatch/internal/materials"
	"github.com/p-n-ai/pai-classmatch/internal/progress"
	"github.com/p-n-ai/pai-classmatch/internal/recommend"
	"github.com/p-n-ai/pai-classmatch/internal/similarity"
)

const (
	maxBodyBytes       = 1 << 20
	healthCheckTimeout = 2 * time.Second
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	repo         recommend.ContentRepository
	recommender  *recommend.Recommender
	scorer       recommend.Comparer
	progress     progress.Provider
	minThreshold float64
	checkers     []namedChecker
}

type namedChecker struct {
	name    string
	checker HealthChecker
}

// Option configures a Server.
type Option func(*Server)

// WithMinThreshold sets the threshold used when a request does not carry one.
func WithMinThreshold(t float64) Option {
	return func(s *Server) {
		s.minThreshold = t
	}
}

// WithHealthCheck registers a dependency probed by /readyz.
func WithHealthCheck(name string, checker HealthChecker) Option {
	return func(s *Server) {
		if checker != nil {
			s.checkers = append(s.checkers, namedChecker{name: name, checker: checker})
		}
	}
}

// NewServer creates a Server. A nil progress provider yields empty contexts.
func NewServer(repo recommend.ContentRepository, rec *recommend.Recommender, prog progress.Provider, opts ...Option) *Server {
	if prog == nil {
		prog = progress.NewMemoryStore()
	}
	s := &Server{
		repo:         repo,
		recommender:  rec,
		scorer:       similarity.NewScorer(),
		progress:     prog,
		minThreshold: recommend.DefaultMinThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("POST /v1/similarity/compare", s.handleCompare)
	mux.HandleFunc("GET /v1/classes/{classID}/compare/{otherID}", s.handleCompareClasses)
	mux.HandleFunc("POST /v1/classes/{classID}/alternatives", s.handleAlternatives)
	mux.HandleFunc("POST /v1/classes/{classID}/alternatives/report", s.handleAlternativesReport)
	mux.HandleFunc("GET /v1/classes/{classID}/alternatives/stream", s.handleAlternativesStream)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	failed := map[string]string{}
	for _, c := range s.checkers {
		if err := c.checker.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "dependency", c.name, "error", err)
			failed[c.name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// errBadRequest marks request-shape problems.
var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, content.ErrInvalidContent):
		return http.StatusBadRequest
	case errors.Is(err, materials.ErrClassNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}
