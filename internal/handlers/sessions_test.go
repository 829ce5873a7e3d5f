package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorenaldo/supercell-hackathon/internal/director"
	"github.com/nicorenaldo/supercell-hackathon/internal/engine"
	"github.com/nicorenaldo/supercell-hackathon/internal/events"
	"github.com/nicorenaldo/supercell-hackathon/internal/media"
	"github.com/nicorenaldo/supercell-hackathon/internal/services"
	"github.com/nicorenaldo/supercell-hackathon/internal/storage"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
	"github.com/nicorenaldo/supercell-hackathon/pkg/scenario"
)

const handlerScenarioJSON = `{
	"name": "Midnight Ritual",
	"story": "A cult gathering has gone wrong.",
	"stages": ["gathering"],
	"cast": [{"id": "high_priest", "description": "Leader of the circle.", "role": "interrogator"}]
}`

type stubProcessor struct {
	evidence []evidence.SentenceEvidence
	err      error
}

func (s *stubProcessor) Process(ctx context.Context, ref string) ([]evidence.SentenceEvidence, error) {
	return s.evidence, s.err
}

type handlerEnv struct {
	handler *SessionsHandler
	engine  *engine.Engine
	store   *storage.MemoryStore
	mock    *services.MockLLM
	proc    *stubProcessor
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ritual.json"), []byte(handlerScenarioJSON), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore()
	mock := services.NewMockLLM()
	eng := engine.New(store, director.New(mock, logger), scenario.NewLibrary(dir), logger)

	mgr, err := media.NewManager(filepath.Join(dir, "recordings"), logger)
	require.NoError(t, err)

	proc := &stubProcessor{evidence: []evidence.SentenceEvidence{{Text: "I was home."}}}
	h := NewSessionsHandler(eng, mgr, proc, events.NewHub(logger), "ritual.json", logger)
	return &handlerEnv{handler: h, engine: eng, store: store, mock: mock, proc: proc}
}

func createTestSession(t *testing.T, env *handlerEnv) *game.Session {
	t.Helper()
	s, err := env.engine.CreateSession(context.Background(), "ritual.json")
	require.NoError(t, err)
	return s
}

func TestCreateSessionHandler(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"scenario":"ritual.json"}`))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var s game.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, "ritual.json", s.Scenario)
}

func TestCreateSessionDefaultScenario(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateSessionUnknownScenario(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"scenario":"missing.json"}`))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadSession(t *testing.T) {
	env := newHandlerEnv(t)
	s := createTestSession(t, env)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+s.ID.String(), nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got game.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, s.ID, got.ID)
}

func TestReadSessionNotFound(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadSessionBadID(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSessions(t *testing.T) {
	env := newHandlerEnv(t)
	createTestSession(t, env)
	createTestSession(t, env)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Sessions []uuid.UUID `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sessions, 2)
}

func TestDeleteSession(t *testing.T) {
	env := newHandlerEnv(t)
	s := createTestSession(t, env)

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+s.ID.String(), nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	stored, err := env.store.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func recordingRequest(t *testing.T, sessionID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "turn.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake webm bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/recording", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSubmitRecording(t *testing.T) {
	env := newHandlerEnv(t)
	s := createTestSession(t, env)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, recordingRequest(t, s.ID.String()))
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "processing", resp["status"])

	// The turn is applied in the background.
	require.Eventually(t, func() bool {
		stored, err := env.store.LoadSession(context.Background(), s.ID)
		return err == nil && stored != nil && stored.TurnCount == 1
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := env.store.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.History)
	assert.Equal(t, "I was home.", stored.History[0].Text)
}

func TestSubmitRecordingUnknownSession(t *testing.T) {
	env := newHandlerEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, recordingRequest(t, uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitRecordingFinishedSession(t *testing.T) {
	env := newHandlerEnv(t)
	s := createTestSession(t, env)

	s.IsOver = true
	require.NoError(t, env.store.SaveSession(context.Background(), s))

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, recordingRequest(t, s.ID.String()))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmitRecordingMissingFile(t *testing.T) {
	env := newHandlerEnv(t)
	s := createTestSession(t, env)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("note", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+s.ID.String()+"/recording", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPatch, "/v1/sessions", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
