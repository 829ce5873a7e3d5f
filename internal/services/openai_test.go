package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorenaldo/supercell-hackathon/pkg/chat"
)

func TestOpenAIChat(t *testing.T) {
	var gotReq OpenAIChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := OpenAIChatResponse{}
		resp.Choices = []OpenAIChatChoice{{}}
		resp.Choices[0].Message.Content = `{"dialogs":[]}`
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := NewOpenAIService("test-key", server.URL, "gpt-4o-mini")
	out, err := svc.Chat(context.Background(), []chat.Message{chat.User("hi")})
	require.NoError(t, err)
	assert.Equal(t, `{"dialogs":[]}`, out)

	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, DirectorTemperature, gotReq.Temperature)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
}

func TestOpenAIChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	svc := NewOpenAIService("test-key", server.URL, "gpt-4o-mini")
	_, err := svc.Chat(context.Background(), []chat.Message{chat.User("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestOpenAIChatErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer server.Close()

	svc := NewOpenAIService("test-key", server.URL, "gpt-4o-mini")
	_, err := svc.Chat(context.Background(), []chat.Message{chat.User("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestOpenAIChatNoMessages(t *testing.T) {
	svc := NewOpenAIService("test-key", "http://unused", "gpt-4o-mini")
	_, err := svc.Chat(context.Background(), nil)
	require.Error(t, err)
}
