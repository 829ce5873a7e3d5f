package prompts

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorenaldo/supercell-hackathon/pkg/chat"
	"github.com/nicorenaldo/supercell-hackathon/pkg/emotion"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
	"github.com/nicorenaldo/supercell-hackathon/pkg/scenario"
)

func testScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:   "Midnight Ritual",
		Story:  "A cult gathering has gone wrong.",
		Stages: []string{"gathering", "ritual"},
		Cast: []scenario.CastMember{
			{ID: "high_priest", Description: "Leader of the circle.", Role: "interrogator"},
		},
		Acts: []scenario.Act{
			{Name: "gathering", Direction: "Probe the player's alibi."},
		},
		DialogRules:    []string{"Never mention the camera."},
		SuspicionRules: []string{"Fear during a denial raises suspicion."},
	}
}

func testSession() *game.Session {
	s := game.NewSession("Midnight Ritual")
	s.Stage = "gathering"
	s.AddCharacter(game.Character{ID: "high_priest", Description: "Leader of the circle."})
	return s
}

func TestBuildRequiresSessionAndScenario(t *testing.T) {
	_, err := New().WithScenario(testScenario()).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is required")

	_, err = New().WithSession(testSession()).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario is required")
}

func TestBuildMessageShape(t *testing.T) {
	msgs, err := New().
		WithSession(testSession()).
		WithScenario(testScenario()).
		Build()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleSystem, msgs[0].Role)
	assert.Equal(t, chat.RoleUser, msgs[1].Role)

	assert.Contains(t, msgs[0].Content, "A cult gathering has gone wrong.")
	assert.Contains(t, msgs[0].Content, "high_priest (interrogator)")
	assert.Contains(t, msgs[0].Content, "Probe the player's alibi.")
	assert.Contains(t, msgs[0].Content, "Never mention the camera.")
	assert.Contains(t, msgs[0].Content, "Fear during a denial raises suspicion.")
	assert.Contains(t, msgs[0].Content, `"dialogs"`)
}

func TestBuildContextJSON(t *testing.T) {
	sess := testSession()
	sess.Suspicion = 7
	sess.History = append(sess.History,
		game.DialogTurn{Role: game.RoleCharacter, CharacterID: "high_priest", Text: "Where were you?"},
		game.DialogTurn{Role: game.RolePlayer, Text: "At home."},
	)
	sess.TurnCount = 1
	sess.Achievements = append(sess.Achievements, game.Achievement{Name: "first_lie"})

	fear := emotion.Neutral100()
	ev := []evidence.SentenceEvidence{{
		Text:    "At home.",
		Emotion: fear,
		Metrics: emotion.DefaultMetrics(),
	}}

	msgs, err := New().
		WithSession(sess).
		WithScenario(testScenario()).
		WithEvidence(ev).
		Build()
	require.NoError(t, err)

	var ctx map[string]any
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Content), &ctx))

	state, ok := ctx["current_state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), state["suspicion_level"])
	assert.Equal(t, float64(1), state["dialog_exchanges_count"])
	assert.Equal(t, []any{"first_lie"}, state["achievements"])

	history, ok := state["dialog_history"].([]any)
	require.True(t, ok)
	assert.Len(t, history, 2)

	input, ok := ctx["user_input"].([]any)
	require.True(t, ok)
	require.Len(t, input, 1)
	entry := input[0].(map[string]any)
	assert.Equal(t, "At home.", entry["text"])
	assert.Equal(t, string(emotion.Neutral), entry["dominant_emotion"])
	assert.Equal(t, emotion.VolatilityStable, entry["volatility"])
	assert.Equal(t, true, entry["consistent_emotion"])
}

func TestBuildTruncatesHistory(t *testing.T) {
	sess := testSession()
	for i := 0; i < 15; i++ {
		sess.History = append(sess.History, game.DialogTurn{
			Role: game.RolePlayer,
			Text: fmt.Sprintf("turn %d", i),
		})
	}

	msgs, err := New().
		WithSession(sess).
		WithScenario(testScenario()).
		Build()
	require.NoError(t, err)

	var ctx turnContext
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Content), &ctx))
	require.Len(t, ctx.CurrentState.DialogHistory, DefaultHistoryLimit)
	assert.Equal(t, "turn 5", ctx.CurrentState.DialogHistory[0].Text)
	assert.Equal(t, "turn 14", ctx.CurrentState.DialogHistory[9].Text)
}

func TestBuildHistoryLimitOverride(t *testing.T) {
	sess := testSession()
	for i := 0; i < 5; i++ {
		sess.History = append(sess.History, game.DialogTurn{
			Role: game.RolePlayer,
			Text: fmt.Sprintf("turn %d", i),
		})
	}

	msgs, err := New().
		WithSession(sess).
		WithScenario(testScenario()).
		WithHistoryLimit(2).
		Build()
	require.NoError(t, err)

	var ctx turnContext
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Content), &ctx))
	require.Len(t, ctx.CurrentState.DialogHistory, 2)
	assert.Equal(t, "turn 3", ctx.CurrentState.DialogHistory[0].Text)
}
