package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorenaldo/supercell-hackathon/internal/events"
)

func TestWSHandler(t *testing.T) {
	env := newHandlerEnv(t)
	s := createTestSession(t, env)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := events.NewHub(logger)
	server := httptest.NewServer(NewWSHandler(env.engine, hub, logger))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session_id=" + s.ID.String()
	client, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer client.CloseNow()

	// Registration happens just after the handshake, so publish on a
	// loop until the client sees the first event.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = hub.Publish(context.Background(), s.ID, events.Event{
					Type: events.EventTypeDialog,
					Data: map[string]any{"dialog": "hello"},
				})
			}
		}
	}()

	_, data, err := client.Read(ctx)
	require.NoError(t, err)
	var ev events.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, events.EventTypeDialog, ev.Type)
}

func TestWSHandlerBadSessionID(t *testing.T) {
	env := newHandlerEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewWSHandler(env.engine, events.NewHub(logger), logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/ws?session_id=nope", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWSHandlerUnknownSession(t *testing.T) {
	env := newHandlerEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewWSHandler(env.engine, events.NewHub(logger), logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/ws?session_id="+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
