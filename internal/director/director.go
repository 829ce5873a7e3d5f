// Package director runs the LLM that plays every non-player character.
// It turns a session, its scenario and the player's emotion evidence
// into a structured verdict for the engine to apply.
package director

import (
	"context"
	"log/slog"
	"sort"

	"github.com/nicorenaldo/supercell-hackathon/internal/services"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
	"github.com/nicorenaldo/supercell-hackathon/pkg/prompts"
	"github.com/nicorenaldo/supercell-hackathon/pkg/scenario"
)

// maxAttempts is how many completions are attempted, across transport
// failures and malformed replies, before giving up on a well-formed
// verdict.
const maxAttempts = 2

// Director evaluates player turns with an LLM.
type Director struct {
	llm    services.LLMService
	logger *slog.Logger
}

// New creates a director backed by the given LLM service.
func New(llm services.LLMService, logger *slog.Logger) *Director {
	return &Director{llm: llm, logger: logger}
}

// Evaluate asks the LLM for a verdict on the player's turn. It never
// fails: any LLM or parse breakdown yields a holding verdict that keeps
// the scene alive with suspicion unchanged, so one bad completion can
// not end a player's game.
func (d *Director) Evaluate(ctx context.Context, sess *game.Session, sc *scenario.Scenario, ev []evidence.SentenceEvidence) *game.Verdict {
	msgs, err := prompts.New().
		WithSession(sess).
		WithScenario(sc).
		WithEvidence(ev).
		Build()
	if err != nil {
		d.logger.Error("Failed to build director prompt",
			"session_id", sess.ID, "error", err)
		return fallbackVerdict(sess)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := d.llm.Chat(ctx, msgs)
		if err != nil {
			d.logger.Warn("LLM request failed",
				"session_id", sess.ID, "attempt", attempt+1, "error", err)
			continue
		}

		v, err := parseVerdict(raw, sess.Suspicion)
		if err != nil {
			d.logger.Warn("Failed to parse director verdict",
				"session_id", sess.ID, "attempt", attempt+1, "error", err)
			continue
		}
		return v
	}

	d.logger.Error("Director verdict unparseable after retries",
		"session_id", sess.ID, "attempts", maxAttempts)
	return fallbackVerdict(sess)
}

// fallbackVerdict keeps the scene alive when no usable verdict could be
// produced. The line is spoken by the session's first character in ID
// order so repeated failures stay consistent.
func fallbackVerdict(sess *game.Session) *game.Verdict {
	var speaker string
	if len(sess.Characters) > 0 {
		ids := make([]string, 0, len(sess.Characters))
		for id := range sess.Characters {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		speaker = ids[0]
	}

	return &game.Verdict{
		Utterances: []game.Utterance{{
			CharacterID: speaker,
			Text:        "The room falls silent for a long moment. Every eye stays fixed on you. \"Go on.\"",
		}},
		Suspicion: sess.Suspicion,
		Continue:  true,
		Ending:    game.EndingNone,
	}
}
