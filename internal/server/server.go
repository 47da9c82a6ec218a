// Package server exposes the synchronizer state, purchase flow, and
// aggregated views over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/cryptophy/lottod/internal/server/handler"
	"github.com/cryptophy/lottod/internal/server/middleware"
	"github.com/cryptophy/lottod/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
// Nil entries leave their routes unregistered.
type Handlers struct {
	Health    *handler.HealthHandler
	Snapshot  *handler.SnapshotHandler
	Purchases *handler.PurchaseHandler
	Board     *handler.BoardHandler
	Profile   *handler.ProfileHandler
	Draws     *handler.DrawsHandler
}

// Server is the headless HTTP + WebSocket API server for the lottery daemon.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth, optional rate limiting) and
// attaches the WebSocket hub. limiter may be nil.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	if handlers.Health != nil {
		mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	}

	// Day snapshot.
	if handlers.Snapshot != nil {
		mux.HandleFunc("GET /api/snapshot", handlers.Snapshot.GetSnapshot)
	}

	// Purchase endpoints.
	if handlers.Purchases != nil {
		mux.HandleFunc("POST /api/purchase", handlers.Purchases.SubmitPurchase)
		mux.HandleFunc("GET /api/purchases", handlers.Purchases.ListPurchases)
	}

	// Aggregated views.
	if handlers.Board != nil {
		mux.HandleFunc("GET /api/leaderboard", handlers.Board.GetLeaderboard)
		mux.HandleFunc("GET /api/history", handlers.Board.GetHistory)
	}

	// Session profile.
	if handlers.Profile != nil {
		mux.HandleFunc("GET /api/profile", handlers.Profile.GetProfile)
	}

	// Settled draws.
	if handlers.Draws != nil {
		mux.HandleFunc("GET /api/draws", handlers.Draws.ListRecent)
		mux.HandleFunc("GET /api/draws/archive", handlers.Draws.ListArchived)
	}

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply per-client rate limiting when a limiter is configured.
	if limiter != nil {
		h = middleware.RateLimit(limiter, 60, time.Minute)(h)
	}

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // submit blocks until the receipt lands
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
