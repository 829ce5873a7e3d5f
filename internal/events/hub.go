// Package events pushes game events to connected clients over
// websockets. Each session has at most one live connection.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
)

// EventType represents the type of event being pushed
type EventType string

const (
	EventTypeDialog      EventType = "dialog"
	EventTypeAchievement EventType = "achievement_unlocked"
	EventTypeGameOver    EventType = "game_over"
	EventTypeError       EventType = "error"
)

// Event is the wire format for pushed events
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Hub tracks the websocket connection per session.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*websocket.Conn
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[uuid.UUID]*websocket.Conn),
		logger: logger,
	}
}

// Register attaches a connection to a session, replacing and closing
// any previous one.
func (h *Hub) Register(sessionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	old := h.conns[sessionID]
	h.conns[sessionID] = conn
	h.mu.Unlock()

	if old != nil {
		old.Close(websocket.StatusPolicyViolation, "replaced by new connection")
	}
	h.logger.Debug("Websocket registered", "session_id", sessionID)
}

// Unregister removes the connection if it is still the registered one.
func (h *Hub) Unregister(sessionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[sessionID] == conn {
		delete(h.conns, sessionID)
	}
	h.mu.Unlock()
}

// Publish sends one event to the session's connection. A session with
// no listener drops the event; delivery is best effort by design of
// the reconnect flow, not an error.
func (h *Hub) Publish(ctx context.Context, sessionID uuid.UUID, ev Event) error {
	h.mu.RLock()
	conn := h.conns[sessionID]
	h.mu.RUnlock()

	if conn == nil {
		h.logger.Debug("No listener for event",
			"session_id", sessionID, "type", ev.Type)
		return nil
	}

	ev.SessionID = sessionID.String()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		h.logger.Warn("Websocket write failed, dropping connection",
			"session_id", sessionID, "error", err)
		h.Unregister(sessionID, conn)
		return err
	}
	return nil
}

// PublishTurn pushes the outcome of a processed turn. Game over goes
// out first so clients can switch to the ending screen before the
// final lines arrive, then achievements, then the dialog itself.
func (h *Hub) PublishTurn(ctx context.Context, sessionID uuid.UUID, resp *game.TurnResponse) {
	if resp.GameOver {
		_ = h.Publish(ctx, sessionID, Event{
			Type: EventTypeGameOver,
			Data: map[string]any{
				"ending_type":     resp.Ending,
				"suspicion_level": resp.Suspicion,
				"analysis":        resp.Analysis,
			},
		})
	}

	for _, a := range resp.Achievements {
		_ = h.Publish(ctx, sessionID, Event{
			Type: EventTypeAchievement,
			Data: map[string]any{
				"name":        a.Name,
				"description": a.Description,
			},
		})
	}

	for _, u := range resp.Utterances {
		_ = h.Publish(ctx, sessionID, Event{
			Type: EventTypeDialog,
			Data: map[string]any{
				"npc_id":          u.CharacterID,
				"dialog":          u.Text,
				"suspicion_level": resp.Suspicion,
			},
		})
	}
}

// PublishError pushes a processing error to the session's listener.
func (h *Hub) PublishError(ctx context.Context, sessionID uuid.UUID, message string) {
	_ = h.Publish(ctx, sessionID, Event{
		Type: EventTypeError,
		Data: map[string]any{"message": message},
	})
}
