// Package http assembles the service's routes.
package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/nba-stream-service/internal/http/handlers"
	"github.com/preston-bernstein/nba-stream-service/internal/http/middleware"
	"github.com/preston-bernstein/nba-stream-service/internal/metrics"
)

// NewRouter registers HTTP and websocket routes.
func NewRouter(h *handlers.Handler, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(func(next nethttp.Handler) nethttp.Handler {
		return middleware.LoggingMiddleware(logger, recorder, next)
	})

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/games", h.GamesToday)
	r.Get("/games/today", h.GamesToday)
	r.Get("/games/{gameID}", h.GameByID)
	r.Get("/streams", h.Streams)
	r.Get("/ws/games/{gameID}", h.StreamGame)

	return r
}
