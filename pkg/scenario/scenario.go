package scenario

import (
	"fmt"
	"strings"
)

// CastMember is a character seeded into a session at creation.
type CastMember struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"` // e.g. "interrogator", "cultist", "witness"
}

// Act is a named story beat with stage direction for the game director.
type Act struct {
	Name      string `json:"name" yaml:"name"`
	Direction string `json:"direction" yaml:"direction"`
}

// Scenario is the template for an interrogation game session.
type Scenario struct {
	Name             string       `json:"name" yaml:"name"`
	FileName         string       `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	Story            string       `json:"story" yaml:"story"`
	Stages           []string     `json:"stages" yaml:"stages"`
	OpeningStage     string       `json:"opening_stage,omitempty" yaml:"opening_stage,omitempty"`
	OpeningSuspicion *int         `json:"opening_suspicion,omitempty" yaml:"opening_suspicion,omitempty"`
	OpeningLine      string       `json:"opening_line,omitempty" yaml:"opening_line,omitempty"`
	OpeningSpeaker   string       `json:"opening_speaker,omitempty" yaml:"opening_speaker,omitempty"`
	Cast             []CastMember `json:"cast" yaml:"cast"`
	Acts             []Act        `json:"acts,omitempty" yaml:"acts,omitempty"`
	SuspicionRules   []string     `json:"suspicion_rules,omitempty" yaml:"suspicion_rules,omitempty"`
	AchievementRules []string     `json:"achievement_rules,omitempty" yaml:"achievement_rules,omitempty"`
	DialogRules      []string     `json:"dialog_rules,omitempty" yaml:"dialog_rules,omitempty"`
}

// Validate checks scenario integrity after loading from file.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scenario name is required")
	}
	if strings.TrimSpace(s.Story) == "" {
		return fmt.Errorf("scenario story is required")
	}
	if len(s.Stages) == 0 {
		return fmt.Errorf("scenario must define at least one stage")
	}
	if len(s.Cast) == 0 {
		return fmt.Errorf("scenario must define at least one cast member")
	}
	seen := make(map[string]struct{}, len(s.Cast))
	for _, m := range s.Cast {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("cast member id is required")
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate cast member id: %s", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	if s.OpeningStage != "" && !s.HasStage(s.OpeningStage) {
		return fmt.Errorf("opening stage %q is not in stages", s.OpeningStage)
	}
	if s.OpeningSpeaker != "" {
		if _, ok := seen[s.OpeningSpeaker]; !ok {
			return fmt.Errorf("opening speaker %q is not in cast", s.OpeningSpeaker)
		}
	}
	return nil
}

// HasStage reports whether name is one of the scenario's stages.
func (s *Scenario) HasStage(name string) bool {
	for _, st := range s.Stages {
		if st == name {
			return true
		}
	}
	return false
}

// StartStage returns the stage a new session begins in.
func (s *Scenario) StartStage() string {
	if s.OpeningStage != "" {
		return s.OpeningStage
	}
	return s.Stages[0]
}
