// Package admin serves the operator endpoints: Prometheus metrics, a health
// probe and, for jwt sessions, session introspection. It listens separately
// from the public gRPC endpoint.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a dependency is usable. A nil error means
// healthy.
type HealthChecker func(ctx context.Context) error

// SessionVerifier resolves a session id to the user it was issued for.
type SessionVerifier interface {
	Verify(session string) (string, error)
}

type Server struct {
	address  string
	logger   logging.Logger
	checks   map[string]HealthChecker
	sessions SessionVerifier
	handler  http.Handler
}

// NewServer builds the admin server. checks are run by /healthz in no
// particular order.
func NewServer(a string, l logging.Logger, checks map[string]HealthChecker) *Server {
	s := &Server{
		address: a,
		logger:  l.With("module", "admin_server"),
		checks:  checks,
	}
	s.handler = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthHandler)
	r.Head("/healthz", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/session", s.sessionHandler)

	return r
}

// WithSessions enables GET /session for sessions v can verify.
func (s *Server) WithSessions(v SessionVerifier) *Server {
	s.sessions = v
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	code := http.StatusOK

	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "check", name, "error", err.Error())
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type sessionResponse struct {
	User  string `json:"user,omitempty"`
	Error string `json:"error,omitempty"`
}

// sessionHandler expects "Authorization: Bearer <session_id>".
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.NotFound(w, r)
		return
	}

	code := http.StatusOK
	var resp sessionResponse

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		code, resp.Error = http.StatusUnauthorized, "missing bearer session"
	} else if user, err := s.sessions.Verify(token); err != nil {
		s.logger.Debug(r.Context(), "session rejected", "error", err.Error())
		code, resp.Error = http.StatusUnauthorized, "invalid session"
	} else {
		resp.User = user
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping admin server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting admin server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
