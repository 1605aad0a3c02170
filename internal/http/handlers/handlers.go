// Package handlers wires HTTP and websocket routes to the domain services.
package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/nba-stream-service/internal/app/games"
	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/poller"
	"github.com/preston-bernstein/nba-stream-service/internal/snapshots"
	"github.com/preston-bernstein/nba-stream-service/internal/stream"
	"github.com/preston-bernstein/nba-stream-service/internal/timeutil"
)

type nowFunc func() time.Time

// Handler wires HTTP routes to the domain services.
type Handler struct {
	svc         *games.Service
	broadcaster *stream.Broadcaster
	snaps       snapshots.Store
	logger      *slog.Logger
	now         nowFunc
	statusFn    func() poller.Status
}

// NewHandler constructs a Handler with defaults.
func NewHandler(svc *games.Service, broadcaster *stream.Broadcaster, snaps snapshots.Store, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		svc:         svc,
		broadcaster: broadcaster,
		snaps:       snaps,
		logger:      logger,
		now:         time.Now,
		statusFn:    statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// GamesToday returns today's schedule, or a persisted snapshot for an
// explicit ?date= query.
func (h *Handler) GamesToday(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	dateParam := r.URL.Query().Get("date")

	if dateParam != "" {
		if _, err := timeutil.ParseDate(dateParam); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid date format (expected YYYY-MM-DD)", h.logger)
			return
		}
		// Explicit date queries serve snapshots only, never live upstream data.
		snap, err := h.loadSnapshot(dateParam)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "no snapshot for date", h.logger)
			return
		}
		if logger != nil {
			logger.Info("served snapshot games", "date", snap.Date, "count", len(snap.Games))
		}
		writeJSON(w, http.StatusOK, snap, h.logger)
		return
	}

	payload := h.svc.Today()
	if logger != nil {
		logger.Info("served today games", "date", payload.Date, "count", len(payload.Games))
	}
	writeJSON(w, http.StatusOK, payload, h.logger)
}

// GameByID returns a specific game if present.
func (h *Handler) GameByID(w http.ResponseWriter, r *http.Request) {
	idRaw := chi.URLParam(r, "gameID")
	id, err := url.PathUnescape(idRaw)
	if err != nil || id == "" || strings.ContainsAny(id, " \t/") {
		writeError(w, r, http.StatusBadRequest, "invalid game id", h.logger)
		return
	}

	game, ok := h.svc.GameByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "game not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, game, h.logger)
}

// Streams lists the live streams and their subscriber counts.
func (h *Handler) Streams(w http.ResponseWriter, r *http.Request) {
	infos := h.broadcaster.Snapshot()
	sort.Slice(infos, func(i, j int) bool { return infos[i].GameID < infos[j].GameID })
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(infos),
		"streams": infos,
	}, h.logger)
}

func (h *Handler) loadSnapshot(date string) (domain.TodayResponse, error) {
	if h.snaps == nil {
		return domain.TodayResponse{}, errSnapshotsDisabled
	}
	return h.snaps.LoadGames(date)
}
