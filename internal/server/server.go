// Package server exposes generated profiles over HTTP: HTML pages for people,
// a JSON API for programs and a WebSocket endpoint for interactive clients.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kapu/player-generator-go/internal/domain"
	apperrors "github.com/kapu/player-generator-go/pkg/errors"
	"go.uber.org/zap"
)

// ProfileService is what the handlers need from the profile layer.
type ProfileService interface {
	BySlug(ctx context.Context, slug, seedCode string) (*domain.GeneratedProfile, error)
	Generate(ctx context.Context, nationalityID int, seed *uint64) (*domain.GeneratedProfile, error)
	Random() (domain.Nationality, string)
	NewSeedCode() string
	Registry() *domain.Registry
}

// HealthCheck reports whether an optional dependency is reachable.
type HealthCheck func(ctx context.Context) bool

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// HealthChecks are reported by /health under their names.
	HealthChecks map[string]HealthCheck
}

type Server struct {
	cfg      Config
	profiles ProfileService
	pages    *pageRenderer
	logger   *zap.Logger
}

func New(cfg Config, profiles ProfileService, logger *zap.Logger) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pages, err := newPageRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	return &Server{
		cfg:      cfg,
		profiles: profiles,
		pages:    pages,
		logger:   logger,
	}, nil
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /p/{slug}", s.handleFreshProfile)
	mux.HandleFunc("GET /p/{slug}/{seed}", s.handleProfilePage)
	mux.HandleFunc("GET /random", s.handleRandom("/p"))
	mux.HandleFunc("GET /api/p/{slug}/{seed}", s.handleProfileJSON)
	mux.HandleFunc("GET /api/random", s.handleRandom("/api/p"))
	mux.HandleFunc("GET /api/nationalities", s.handleNationalities)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the WebSocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// errorStatus maps an error to its response status and client-facing message.
// Server-side failures are not described to clients.
func errorStatus(err error) (int, string) {
	status := apperrors.StatusCode(err)
	if status >= 500 {
		return status, "internal error"
	}
	return status, err.Error()
}
