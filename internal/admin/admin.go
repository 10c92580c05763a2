// Package admin serves the operator HTTP endpoints: health and Prometheus metrics.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is anything whose liveness /_health should report (database pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stats provides the counters shown in /_health.
type Stats interface {
	Count() int
}

type Server struct {
	db       Pinger
	sessions Stats

	httpServer *http.Server
}

// NewServer creates the admin server. db and sessions may be nil.
func NewServer(db Pinger, sessions Stats) *Server {
	return &Server{db: db, sessions: sessions}
}

// Router returns the HTTP handler with all admin routes.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Throttle(16))

	mux.Get("/_health", s.health)
	mux.Get("/_metrics", promhttp.Handler().ServeHTTP)

	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			renderJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":    "ERROR",
				"component": "database",
				"error":     err.Error(),
			})
			return
		}
	}

	resp := map[string]string{"status": "OK"}
	if s.sessions != nil {
		resp["sessions"] = strconv.Itoa(s.sessions.Count())
	}
	renderJSON(w, http.StatusOK, resp)
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write admin response", "error", err)
	}
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening admin on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("admin server listening", "address", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down admin server: %w", err)
	}
	<-errCh
	slog.Info("admin server stopped")
	return nil
}
