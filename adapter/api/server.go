// Package api provides the local HTTP bridge used by the browser extension.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/lingua/pkg/observability"
)

// CorrelationHeader carries the caller's correlation id.
const CorrelationHeader = "X-Correlation-ID"

// Server is the HTTP API server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	handler *Handler
	health  *observability.HealthRegistry
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
// The bridge binds to loopback only.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "127.0.0.1:7878",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server. health may be nil.
func NewServer(cfg ServerConfig, handler *Handler, health *observability.HealthRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		handler: handler,
		health:  health,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRequestContext(s.mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Trust and gating
	s.mux.HandleFunc("GET /api/v1/trust", s.handler.GetTrust)
	s.mux.HandleFunc("POST /api/v1/access", s.handler.CheckAccess)
	s.mux.HandleFunc("GET /api/v1/features", s.handler.ListFeatures)

	// Translation
	s.mux.HandleFunc("POST /api/v1/translations", s.handler.Translate)

	// History
	s.mux.HandleFunc("GET /api/v1/history", s.handler.ListHistory)
	s.mux.HandleFunc("DELETE /api/v1/history", s.handler.ClearHistory)
	s.mux.HandleFunc("POST /api/v1/history/sync", s.handler.SyncHistory)
	s.mux.HandleFunc("POST /api/v1/history/fetch", s.handler.FetchHistory)

	// License
	s.mux.HandleFunc("POST /api/v1/license/activate", s.handler.ActivateLicense)
	s.mux.HandleFunc("DELETE /api/v1/license", s.handler.DeactivateLicense)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get(CorrelationHeader))
		w.Header().Set(CorrelationHeader, observability.CorrelationIDFromContext(ctx))

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"correlation_id", observability.CorrelationIDFromContext(ctx),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	result := s.health.Check(r.Context())
	status := http.StatusOK
	if result.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, apiErr *APIError, message string) {
	if message == "" {
		message = apiErr.Message
	}
	writeJSON(w, apiErr.Status, &APIError{
		Status:  apiErr.Status,
		Code:    apiErr.Code,
		Message: message,
	})
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrForbidden = &APIError{
		Status:  http.StatusForbidden,
		Code:    "premium_required",
		Message: "This feature requires a premium license",
	}
	ErrPreconditionFailed = &APIError{
		Status:  http.StatusPreconditionFailed,
		Code:    "provider_not_configured",
		Message: "Translation provider is not configured",
	}
	ErrBadGateway = &APIError{
		Status:  http.StatusBadGateway,
		Code:    "upstream_error",
		Message: "Translation provider failed",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)
