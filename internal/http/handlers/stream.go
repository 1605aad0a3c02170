package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/nba-stream-service/internal/logging"
)

var errSnapshotsDisabled = errors.New("snapshot store not configured")

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	// Clients are not expected to send data; a small limit bounds abuse.
	maxClientMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamGame upgrades the connection to a websocket and pumps the game's
// updates until the game ends or the client disconnects. Joining an unknown
// game is allowed; the stream reports it is waiting for the game to start.
func (h *Handler) StreamGame(w http.ResponseWriter, r *http.Request) {
	idRaw := chi.URLParam(r, "gameID")
	gameID, err := url.PathUnescape(idRaw)
	if err != nil || gameID == "" || strings.ContainsAny(gameID, " \t/") {
		writeError(w, r, http.StatusBadRequest, "invalid game id", h.logger)
		return
	}

	sub, err := h.broadcaster.AddSubscriber(gameID)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	defer h.broadcaster.RemoveSubscriber(gameID, sub)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		logging.Warn(h.logger, "websocket upgrade failed",
			slog.String(logging.FieldGameID, gameID),
			slog.Any("err", err))
		return
	}
	defer conn.Close()

	logger := loggerFromContext(r, h.logger)
	logging.Info(logger, "stream client connected", slog.String(logging.FieldGameID, gameID))

	// Reader goroutine: its only job is to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxClientMessageSize)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-sub.Updates():
			if !ok {
				// Stream ended; the game_over update was already delivered.
				deadline := time.Now().Add(writeWait)
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended")
				_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
				logging.Info(logger, "stream ended", slog.String(logging.FieldGameID, gameID))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(update); err != nil {
				logging.Debug(logger, "stream write failed",
					slog.String(logging.FieldGameID, gameID),
					slog.Any("err", err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			logging.Debug(logger, "stream client disconnected", slog.String(logging.FieldGameID, gameID))
			return
		case <-r.Context().Done():
			return
		}
	}
}
