package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/insightflow/insightflow-go/config"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

// Server wraps the HTTP server with route setup and lifecycle management.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer wires all routes. WriteTimeout stays unset because the SSE and
// WebSocket endpoints hold their connections open.
func NewServer(cfg *config.Config, h *Handler, ws *WebSocketHandler, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/analyze", h.handleAnalyze)
	mux.HandleFunc("POST /api/v1/analyze/stream", h.handleAnalyzeStream)
	mux.HandleFunc("GET /api/v1/stock/{ticker}", h.handleStock)
	mux.HandleFunc("GET /api/v1/market/ticker-tape", h.handleTickerTape)
	mux.HandleFunc("GET /api/v1/market/indices", h.handleIndices)
	mux.HandleFunc("GET /ws/debate", ws.handleAutoSession)
	mux.HandleFunc("GET /ws/debate/{session_id}", ws.handleSession)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("/", h.handleRoot)

	httpServer := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     corsMiddleware(cfg.Server.CORSOrigins, mux),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	return &Server{httpServer: httpServer, log: log}
}

// Start blocks until the server stops or fails.
func (s *Server) Start() error {
	s.log.Infow("http server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains connections until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Infow("http server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// corsMiddleware answers preflights and stamps allowed origins.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowedSet[origin] || allowedSet["*"]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
