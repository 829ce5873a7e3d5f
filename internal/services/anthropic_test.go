package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorenaldo/supercell-hackathon/pkg/chat"
)

func TestSplitChatMessages(t *testing.T) {
	svc := NewAnthropicService("key", "claude-sonnet-4-20250514", slog.New(slog.NewTextHandler(io.Discard, nil)))

	system, conversation := svc.splitChatMessages([]chat.Message{
		chat.System("You are the director."),
		chat.User("turn context"),
		chat.System("Respond with JSON."),
		{Role: chat.RoleAssistant, Content: "previous verdict"},
	})

	assert.Equal(t, "You are the director.\n\nRespond with JSON.", system)
	require.Len(t, conversation, 2)
	assert.Equal(t, chat.RoleUser, conversation[0].Role)
	assert.Equal(t, chat.RoleAssistant, conversation[1].Role)
}

func TestSplitChatMessagesNoSystem(t *testing.T) {
	svc := NewAnthropicService("key", "claude-sonnet-4-20250514", slog.New(slog.NewTextHandler(io.Discard, nil)))

	system, conversation := svc.splitChatMessages([]chat.Message{chat.User("hi")})
	assert.Empty(t, system)
	assert.Len(t, conversation, 1)
}
