package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Suspicion score bounds. The narrative controller reports an absolute
// score each turn; values outside this range are clamped, never trusted.
const (
	SuspicionMin     = 0
	SuspicionMax     = 10
	SuspicionDefault = 5
)

var (
	// ErrSessionNotFound reports an unknown or already-removed session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionOver reports a turn submitted after the game ended.
	ErrSessionOver = errors.New("session is already over")
)

// Dialog speaker roles.
const (
	RolePlayer    = "player"
	RoleCharacter = "character"
)

// DialogTurn is one line in a session's dialog history.
type DialogTurn struct {
	Role        string `json:"role"`
	Text        string `json:"text"`
	CharacterID string `json:"character_id,omitempty"`
}

// Character is a non-player character in the scenario. Characters are owned
// by the session; the controller may introduce new ones mid-game.
type Character struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Role        string `json:"role"`
}

// Achievement is a free-form badge generated by the narrative controller.
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Session is the aggregate state of one playthrough. It is mutated only by
// the game engine; the store hands out copies.
type Session struct {
	ID           uuid.UUID            `json:"id"`
	Scenario     string               `json:"scenario"`
	Stage        string               `json:"stage,omitempty"`
	Suspicion    int                  `json:"suspicion_level"`
	IsOver       bool                 `json:"is_over"`
	Ending       EndingType           `json:"ending_type,omitempty"`
	Analysis     string               `json:"analysis,omitempty"`
	History      []DialogTurn         `json:"dialog_history,omitempty"`
	Characters   map[string]Character `json:"characters,omitempty"`
	Achievements []Achievement        `json:"achievements,omitempty"`
	TurnCount    int                  `json:"turn_count"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NewSession creates an empty session for the named scenario with a fresh
// collision-resistant id and the default suspicion seed.
func NewSession(scenarioName string) *Session {
	return &Session{
		ID:         uuid.New(),
		Scenario:   scenarioName,
		Suspicion:  SuspicionDefault,
		Ending:     EndingNone,
		History:    make([]DialogTurn, 0),
		Characters: make(map[string]Character),
		CreatedAt:  time.Now(),
	}
}

// AchievementNames returns the names of all achievements earned so far, in
// unlock order. Sent to the controller so it can avoid re-granting.
func (s *Session) AchievementNames() []string {
	names := make([]string, len(s.Achievements))
	for i, a := range s.Achievements {
		names[i] = a.Name
	}
	return names
}

// AddCharacter inserts c only when its id is not already present.
// First write wins; a duplicate id is a no-op.
func (s *Session) AddCharacter(c Character) bool {
	if s.Characters == nil {
		s.Characters = make(map[string]Character)
	}
	if _, ok := s.Characters[c.ID]; ok {
		return false
	}
	s.Characters[c.ID] = c
	return true
}

// Clone returns a deep copy of the session via a JSON round trip, so
// snapshots handed to readers never alias engine-owned state.
func (s *Session) Clone() (*Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session for copy: %w", err)
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session copy: %w", err)
	}
	return &out, nil
}

// ClampSuspicion bounds v into [SuspicionMin, SuspicionMax].
func ClampSuspicion(v int) int {
	if v < SuspicionMin {
		return SuspicionMin
	}
	if v > SuspicionMax {
		return SuspicionMax
	}
	return v
}
