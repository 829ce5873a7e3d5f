package director

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
)

// Wire shapes for the director's JSON reply. Field names are pinned by
// the response format prompt; changing either side breaks parsing.
type wireDialog struct {
	NPCID  string `json:"npc_id"`
	Dialog string `json:"dialog"`
}

type wireAchievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type wireCharacter struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Role        string `json:"role"`
}

type wireVerdict struct {
	Dialogs      []wireDialog      `json:"dialogs"`
	Stage        *string           `json:"stage"`
	Suspicion    *int              `json:"suspicion_level"`
	Continue     *bool             `json:"continue_story"`
	Ending       *string           `json:"ending_type"`
	Achievements []wireAchievement `json:"achievement_unlocked"`
	NewNPC       *wireCharacter    `json:"new_npc"`
	Analysis     *string           `json:"analysis"`
}

// extractJSON pulls the JSON object out of a raw completion. Models
// occasionally wrap the object in markdown fences or prose despite
// instructions, so everything outside the outermost braces is dropped.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}

// parseVerdict turns a raw completion into a validated verdict.
// currentSuspicion fills in when the reply omits a suspicion level.
func parseVerdict(raw string, currentSuspicion int) (*game.Verdict, error) {
	text, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var wire wireVerdict
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}
	if wire.Continue == nil {
		return nil, fmt.Errorf("verdict missing continue_story")
	}

	v := &game.Verdict{
		Suspicion: currentSuspicion,
		Continue:  *wire.Continue,
		Ending:    game.EndingNone,
	}

	for _, d := range wire.Dialogs {
		v.Utterances = append(v.Utterances, game.Utterance{
			CharacterID: d.NPCID,
			Text:        d.Dialog,
		})
	}
	if wire.Stage != nil {
		v.Stage = strings.TrimSpace(*wire.Stage)
	}
	if wire.Suspicion != nil {
		v.Suspicion = game.ClampSuspicion(*wire.Suspicion)
	}
	if wire.Ending != nil && *wire.Ending != "" {
		v.Ending = game.EndingType(*wire.Ending)
	}
	for _, a := range wire.Achievements {
		if a.Name == "" {
			continue
		}
		v.Achievements = append(v.Achievements, game.Achievement{
			Name:        a.Name,
			Description: a.Description,
		})
	}
	if wire.NewNPC != nil {
		v.NewCharacter = &game.Character{
			ID:          wire.NewNPC.ID,
			Description: wire.NewNPC.Description,
			Role:        wire.NewNPC.Role,
		}
	}
	if wire.Analysis != nil {
		v.Analysis = *wire.Analysis
	}

	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("invalid verdict: %w", err)
	}
	return v, nil
}
