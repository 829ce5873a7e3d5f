package handlers

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/nicorenaldo/supercell-hackathon/internal/engine"
	"github.com/nicorenaldo/supercell-hackathon/internal/events"
)

// WSHandler upgrades clients to a websocket and attaches them to the
// session's event stream.
type WSHandler struct {
	engine *engine.Engine
	hub    *events.Hub
	logger *slog.Logger
}

func NewWSHandler(eng *engine.Engine, hub *events.Hub, logger *slog.Logger) *WSHandler {
	return &WSHandler{engine: eng, hub: hub, logger: logger}
}

// ServeHTTP handles GET /v1/ws?session_id={uuid}
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid session ID format")
		return
	}

	s, err := h.engine.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "failed to load session")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "session not found")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The game client is served from a different origin in
		// development.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	h.hub.Register(sessionID, conn)
	defer h.hub.Unregister(sessionID, conn)

	// Clients only listen; the read loop exists to observe the close.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			h.logger.Debug("Websocket closed", "session_id", sessionID, "error", err)
			return
		}
	}
}
