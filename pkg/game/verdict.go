package game

import (
	"fmt"

	"github.com/google/uuid"
)

// EndingType tags how a finished game ended.
type EndingType string

const (
	EndingNone    EndingType = "none"
	EndingSuccess EndingType = "success"
	EndingFailure EndingType = "failure"
	EndingError   EndingType = "error"
)

// Valid reports whether e is a known ending tag.
func (e EndingType) Valid() bool {
	switch e {
	case EndingNone, EndingSuccess, EndingFailure, EndingError:
		return true
	}
	return false
}

// Utterance is one character line produced by the narrative controller.
type Utterance struct {
	CharacterID string `json:"character_id"`
	Text        string `json:"text"`
}

// Verdict is the narrative controller's structured decision for one turn.
// continue=false is authoritative and terminal: the engine never re-enters
// the session once it has been observed. An empty Stage leaves the
// session's stage as it was.
type Verdict struct {
	Utterances   []Utterance   `json:"utterances"`
	Stage        string        `json:"stage,omitempty"`
	Suspicion    int           `json:"suspicion_level"`
	Continue     bool          `json:"continue_story"`
	Ending       EndingType    `json:"ending_type"`
	Achievements []Achievement `json:"achievements,omitempty"`
	NewCharacter *Character    `json:"new_character,omitempty"`
	Analysis     string        `json:"analysis,omitempty"`
}

// Validate checks the structural contract: at least one utterance and a
// recognized ending tag. Suspicion clamping is the caller's concern.
func (v *Verdict) Validate() error {
	if len(v.Utterances) == 0 {
		return fmt.Errorf("verdict must contain at least one utterance")
	}
	for i, u := range v.Utterances {
		if u.Text == "" {
			return fmt.Errorf("utterance %d has empty text", i)
		}
	}
	if v.Ending == "" {
		v.Ending = EndingNone
	}
	if !v.Ending.Valid() {
		return fmt.Errorf("unknown ending type %q", v.Ending)
	}
	if v.NewCharacter != nil && v.NewCharacter.ID == "" {
		return fmt.Errorf("new character must have an id")
	}
	return nil
}

// TurnResponse is the engine's reply to the transport layer after one
// processed turn. It mirrors the verdict plus the newly unlocked
// achievements; Analysis is populated only when the game is over.
type TurnResponse struct {
	SessionID    uuid.UUID     `json:"session_id"`
	Utterances   []Utterance   `json:"dialogs"`
	Suspicion    int           `json:"suspicion_level"`
	GameOver     bool          `json:"game_over"`
	Ending       EndingType    `json:"ending_type"`
	Achievements []Achievement `json:"achievements,omitempty"`
	Analysis     string        `json:"analysis,omitempty"`
}
