package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nicorenaldo/supercell-hackathon/internal/engine"
	"github.com/nicorenaldo/supercell-hackathon/internal/events"
	"github.com/nicorenaldo/supercell-hackathon/internal/media"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
)

// maxRecordingBytes caps a single recording upload at 50 MB.
const maxRecordingBytes = 50 << 20

// turnTimeout bounds one full background turn: media analysis plus the
// director call.
const turnTimeout = 5 * time.Minute

// Processor turns a staged recording into per-sentence evidence.
// Implemented by evidence.Aggregator.
type Processor interface {
	Process(ctx context.Context, ref string) ([]evidence.SentenceEvidence, error)
}

// SessionsHandler serves the session lifecycle and recording intake.
type SessionsHandler struct {
	engine          *engine.Engine
	media           *media.Manager
	processor       Processor
	hub             *events.Hub
	defaultScenario string
	logger          *slog.Logger
}

func NewSessionsHandler(eng *engine.Engine, m *media.Manager, p Processor, hub *events.Hub, defaultScenario string, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		engine:          eng,
		media:           m,
		processor:       p,
		hub:             hub,
		defaultScenario: defaultScenario,
		logger:          logger,
	}
}

type createSessionRequest struct {
	Scenario string `json:"scenario,omitempty"`
}

// ServeHTTP handles session operations
// Routes:
// POST /v1/sessions                  - Create new session
// GET /v1/sessions                   - List session IDs
// GET /v1/sessions/{id}              - Read session by ID
// DELETE /v1/sessions/{id}           - Delete session by ID
// POST /v1/sessions/{id}/recording   - Submit a recording as the player's turn
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "invalid session ID format")
		return
	}

	if len(parts) == 2 && parts[1] == "recording" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleRecording(w, r, sessionID)
		return
	}
	if len(parts) > 1 {
		writeError(w, h.logger, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, sessionID)
	case http.MethodDelete:
		h.handleDelete(w, r, sessionID)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *SessionsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	scenarioFile := req.Scenario
	if scenarioFile == "" {
		scenarioFile = h.defaultScenario
	}

	s, err := h.engine.CreateSession(r.Context(), scenarioFile)
	if err != nil {
		h.logger.Error("Failed to create session", "scenario", scenarioFile, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "failed to create session: "+err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, s)
}

func (h *SessionsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.engine.ListSessions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sessions", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"sessions": ids})
}

func (h *SessionsHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "failed to load session")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.engine.RemoveSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "failed to delete session")
		return
	}
	if err := h.media.CleanupSession(id); err != nil {
		h.logger.Warn("Failed to clean up recordings", "session_id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecording stages the uploaded recording and answers 202; the
// analysis and the director turn run in the background and the result
// is pushed over the session's websocket.
func (h *SessionsHandler) handleRecording(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "failed to load session")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "session not found")
		return
	}
	if s.IsOver {
		writeError(w, h.logger, http.StatusConflict, "session is already over")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRecordingBytes)
	if err := r.ParseMultipartForm(maxRecordingBytes); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "missing recording file")
		return
	}
	defer file.Close()

	path, err := h.media.Stage(id, s.TurnCount+1, file, filepath.Ext(header.Filename))
	if err != nil {
		h.logger.Error("Failed to stage recording", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "failed to store recording")
		return
	}

	// The upload response must not wait on transcription or the LLM.
	// Abandoning the HTTP request must not cancel the turn either, so
	// the background context is detached from the request.
	go h.processTurn(id, path)

	writeJSON(w, h.logger, http.StatusAccepted, map[string]string{
		"status":     "processing",
		"session_id": id.String(),
	})
}

func (h *SessionsHandler) processTurn(id uuid.UUID, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	ev, err := h.processor.Process(ctx, path)
	if err != nil {
		h.logger.Error("Recording analysis failed",
			"session_id", id, "path", path, "error", err)
		h.hub.PublishError(ctx, id, "could not analyze recording")
		return
	}

	resp, err := h.engine.ProcessTurn(ctx, id, ev)
	if err != nil {
		if errors.Is(err, game.ErrSessionOver) || errors.Is(err, game.ErrSessionNotFound) {
			h.logger.Warn("Turn rejected", "session_id", id, "error", err)
		} else {
			h.logger.Error("Turn processing failed", "session_id", id, "error", err)
		}
		h.hub.PublishError(ctx, id, err.Error())
		return
	}

	h.hub.PublishTurn(ctx, id, resp)
}
