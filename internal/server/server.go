package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/config"
	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/metrics"
	"github.com/jonathan/keyword-portfolio/internal/server/middleware"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// CycleRunner triggers decision cycles on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context, projectID uuid.UUID, kind types.CycleKind) (any, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      db.Store
	engine     CycleRunner
	metrics    *metrics.Metrics
	jwtService *JWTService
	tuning     config.Tuning
	capacity   int
	ping       func(context.Context) error
	logger     *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port     int
	Store    db.Store
	Engine   CycleRunner
	Metrics  *metrics.Metrics
	JWT      *JWTService
	Tuning   config.Tuning
	Capacity int
	// Ping checks backing services for /health. Optional.
	Ping   func(context.Context) error
	Logger *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("server requires a JWT service")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}

	s := &Server{
		store:      cfg.Store,
		engine:     cfg.Engine,
		metrics:    cfg.Metrics,
		jwtService: cfg.JWT,
		tuning:     cfg.Tuning,
		capacity:   cfg.Capacity,
		ping:       cfg.Ping,
		logger:     cfg.Logger,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Triggered cycles run synchronously
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with logging applied.
func (s *Server) Handler() http.Handler {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Reads
	mux.HandleFunc("GET /projects/{id}", s.handleGetProject)
	mux.HandleFunc("GET /projects/{id}/portfolio", s.handleGetPortfolio)
	mux.HandleFunc("GET /projects/{id}/cycles", s.handleListCycles)

	// Pure decisions, no state
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("POST /adjudicate", s.handleAdjudicate)

	// Mutations and triggers
	mux.Handle("POST /projects", protected(s.handleCreateProject))
	mux.Handle("PUT /projects/{id}/authority", protected(s.handleUpdateAuthority))
	mux.Handle("POST /projects/{id}/deactivate", protected(s.handleDeactivateProject))
	mux.Handle("POST /projects/{id}/cycles/{kind}", protected(s.handleTriggerCycle))

	return s.withLogging(mux)
}

// Start listens until ctx is cancelled and then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFrom maps err to a status and writes it. Server-side failures are
// logged and not echoed to the client.
func (s *Server) errorFrom(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

func (s *Server) projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid project ID")
		return uuid.Nil, false
	}
	return id, true
}
