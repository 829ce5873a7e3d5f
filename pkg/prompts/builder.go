package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicorenaldo/supercell-hackathon/pkg/chat"
	"github.com/nicorenaldo/supercell-hackathon/pkg/emotion"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
	"github.com/nicorenaldo/supercell-hackathon/pkg/scenario"
)

// DefaultHistoryLimit is the number of dialog turns included in the
// director context. Older turns are dropped to keep prompts bounded.
const DefaultHistoryLimit = 10

// Builder constructs the chat messages for one director evaluation
// using a fluent interface.
type Builder struct {
	session      *game.Session
	scenario     *scenario.Scenario
	evidence     []evidence.SentenceEvidence
	historyLimit int
}

// New creates a prompt builder with default settings.
func New() *Builder {
	return &Builder{historyLimit: DefaultHistoryLimit}
}

// WithSession sets the session being evaluated.
func (b *Builder) WithSession(s *game.Session) *Builder {
	b.session = s
	return b
}

// WithScenario sets the scenario the session was created from.
func (b *Builder) WithScenario(sc *scenario.Scenario) *Builder {
	b.scenario = sc
	return b
}

// WithEvidence sets the player's per-sentence emotion evidence for
// this turn.
func (b *Builder) WithEvidence(ev []evidence.SentenceEvidence) *Builder {
	b.evidence = ev
	return b
}

// WithHistoryLimit overrides the dialog history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build returns the message array for LLM consumption: one system
// message with scenario and rules, one user message with the turn
// context as JSON.
func (b *Builder) Build() ([]chat.Message, error) {
	if b.session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if b.scenario == nil {
		return nil, fmt.Errorf("scenario is required")
	}

	userMsg, err := b.buildContext()
	if err != nil {
		return nil, fmt.Errorf("error building turn context: %w", err)
	}

	return []chat.Message{
		chat.System(b.buildSystemPrompt()),
		chat.User(userMsg),
	}, nil
}

func (b *Builder) buildSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString(BaseSystemPrompt)

	sb.WriteString("\n\n## Story\n")
	sb.WriteString(b.scenario.Story)

	sb.WriteString("\n\n## Characters\n")
	for _, m := range b.scenario.Cast {
		sb.WriteString("- " + m.ID)
		if m.Role != "" {
			sb.WriteString(" (" + m.Role + ")")
		}
		sb.WriteString(": " + m.Description + "\n")
	}

	if len(b.scenario.Acts) > 0 {
		sb.WriteString("\n## Acts\n")
		for _, a := range b.scenario.Acts {
			sb.WriteString("- " + a.Name + ": " + a.Direction + "\n")
		}
		sb.WriteString("Current stage: " + b.session.Stage + "\n")
	}

	writeRules := func(title string, rules []string) {
		if len(rules) == 0 {
			return
		}
		sb.WriteString("\n## " + title + "\n")
		for _, r := range rules {
			sb.WriteString("- " + r + "\n")
		}
	}
	writeRules("Dialog rules", b.scenario.DialogRules)
	writeRules("Suspicion rules", b.scenario.SuspicionRules)
	writeRules("Achievement rules", b.scenario.AchievementRules)

	sb.WriteString("\n")
	sb.WriteString(SuspicionPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(ResponseFormatPrompt)
	return sb.String()
}

// Wire shapes for the turn context JSON.
type historyEntry struct {
	Role        string `json:"role"`
	CharacterID string `json:"npc_id,omitempty"`
	Text        string `json:"text"`
}

type evidenceEntry struct {
	Text            string               `json:"text"`
	Emotions        emotion.Distribution `json:"emotions"`
	DominantEmotion emotion.Category     `json:"dominant_emotion"`
	Volatility      string               `json:"volatility"`
	Consistent      bool                 `json:"consistent_emotion"`
}

type currentState struct {
	Stage         string            `json:"stage"`
	Suspicion     int               `json:"suspicion_level"`
	DialogHistory []historyEntry    `json:"dialog_history"`
	Achievements  []string          `json:"achievements"`
	NPCs          map[string]string `json:"npcs"`
	ExchangeCount int               `json:"dialog_exchanges_count"`
}

type turnContext struct {
	CurrentState currentState    `json:"current_state"`
	UserInput    []evidenceEntry `json:"user_input"`
}

func (b *Builder) buildContext() (string, error) {
	history := b.session.History
	if b.historyLimit > 0 && len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	entries := make([]historyEntry, len(history))
	for i, t := range history {
		entries[i] = historyEntry{
			Role:        t.Role,
			CharacterID: t.CharacterID,
			Text:        t.Text,
		}
	}

	npcs := make(map[string]string, len(b.session.Characters))
	for id, c := range b.session.Characters {
		npcs[id] = c.Description
	}

	input := make([]evidenceEntry, len(b.evidence))
	for i, ev := range b.evidence {
		input[i] = evidenceEntry{
			Text:            ev.Text,
			Emotions:        ev.Emotion,
			DominantEmotion: ev.Emotion.Dominant(),
			Volatility:      ev.Metrics.Volatility(),
			Consistent:      ev.Metrics.Consistent,
		}
	}

	ctx := turnContext{
		CurrentState: currentState{
			Stage:         b.session.Stage,
			Suspicion:     b.session.Suspicion,
			DialogHistory: entries,
			Achievements:  b.session.AchievementNames(),
			NPCs:          npcs,
			ExchangeCount: b.session.TurnCount,
		},
		UserInput: input,
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
