// Package engine owns the turn lifecycle: session creation, applying
// director verdicts to session state, and persistence. It is the only
// place session state is mutated.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nicorenaldo/supercell-hackathon/internal/director"
	"github.com/nicorenaldo/supercell-hackathon/internal/storage"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
	"github.com/nicorenaldo/supercell-hackathon/pkg/scenario"
)

// Engine processes player turns against stored sessions.
type Engine struct {
	store    storage.Storage
	director *director.Director
	library  *scenario.Library
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// New creates an engine.
func New(store storage.Storage, d *director.Director, lib *scenario.Library, logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		director: d,
		library:  lib,
		logger:   logger,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor returns the per-session mutex, creating it on first use.
// Turns for one session serialize; different sessions run in parallel.
func (e *Engine) lockFor(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// dropLock removes a session's mutex entry. Turns against ids that never
// existed would otherwise leave entries behind forever.
func (e *Engine) dropLock(id uuid.UUID) {
	e.mu.Lock()
	delete(e.locks, id)
	e.mu.Unlock()
}

// CreateSession starts a new session from the named scenario file and
// persists it. The scenario seeds the stage, suspicion, cast and the
// opening line.
func (e *Engine) CreateSession(ctx context.Context, scenarioFile string) (*game.Session, error) {
	sc, err := e.library.Get(scenarioFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	s := game.NewSession(sc.FileName)
	s.Stage = sc.StartStage()
	if sc.OpeningSuspicion != nil {
		s.Suspicion = game.ClampSuspicion(*sc.OpeningSuspicion)
	}
	for _, m := range sc.Cast {
		s.AddCharacter(game.Character{
			ID:          m.ID,
			Description: m.Description,
			Role:        m.Role,
		})
	}
	if sc.OpeningLine != "" {
		s.History = append(s.History, game.DialogTurn{
			Role:        game.RoleCharacter,
			CharacterID: sc.OpeningSpeaker,
			Text:        sc.OpeningLine,
		})
	}
	s.UpdatedAt = time.Now()

	if err := e.store.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	e.logger.Info("Session created",
		"session_id", s.ID, "scenario", s.Scenario, "stage", s.Stage)
	return s, nil
}

// ProcessTurn applies one player turn: the player's transcribed words
// plus emotion evidence go to the director, and the verdict is applied
// to the session. The per-session lock is held for the whole
// load-evaluate-apply-save sequence.
//
// Unknown sessions fail with game.ErrSessionNotFound and finished ones
// with game.ErrSessionOver; neither mutates stored state.
func (e *Engine) ProcessTurn(ctx context.Context, id uuid.UUID, ev []evidence.SentenceEvidence) (*game.TurnResponse, error) {
	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s, err := e.store.LoadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		e.dropLock(id)
		return nil, game.ErrSessionNotFound
	}
	if s.IsOver {
		return nil, game.ErrSessionOver
	}

	sc, err := e.library.Get(s.Scenario)
	if err != nil {
		e.logger.Error("Scenario missing for active session",
			"session_id", id, "scenario", s.Scenario, "error", err)
		return e.failTurn(ctx, s, "The scene cannot continue."), nil
	}

	if text := playerText(ev); text != "" {
		s.History = append(s.History, game.DialogTurn{
			Role: game.RolePlayer,
			Text: text,
		})
	}
	s.TurnCount++

	v := e.director.Evaluate(ctx, s, sc, ev)

	// The director's stage is authoritative; an empty stage means no
	// transition this turn.
	if v.Stage != "" {
		s.Stage = v.Stage
	}
	s.Suspicion = game.ClampSuspicion(v.Suspicion)
	for _, u := range v.Utterances {
		s.History = append(s.History, game.DialogTurn{
			Role:        game.RoleCharacter,
			CharacterID: u.CharacterID,
			Text:        u.Text,
		})
	}
	if v.NewCharacter != nil {
		s.AddCharacter(*v.NewCharacter)
	}
	// Achievements are append-only; the director is trusted not to
	// re-grant, and duplicates are kept as-is.
	s.Achievements = append(s.Achievements, v.Achievements...)
	if !v.Continue {
		s.IsOver = true
		s.Ending = v.Ending
		if s.Ending == game.EndingNone {
			s.Ending = game.EndingFailure
		}
		s.Analysis = v.Analysis
	}
	s.UpdatedAt = time.Now()

	if err := e.store.SaveSession(ctx, s); err != nil {
		e.logger.Error("Failed to save session after turn",
			"session_id", id, "error", err)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	e.logger.Info("Turn processed",
		"session_id", id,
		"turn", s.TurnCount,
		"stage", s.Stage,
		"suspicion", s.Suspicion,
		"game_over", s.IsOver)

	return &game.TurnResponse{
		SessionID:    s.ID,
		Utterances:   v.Utterances,
		Suspicion:    s.Suspicion,
		GameOver:     s.IsOver,
		Ending:       s.Ending,
		Achievements: v.Achievements,
		Analysis:     s.Analysis,
	}, nil
}

// failTurn terminates a session that hit an unrecoverable internal
// error. The ending is marked as an error so clients can distinguish it
// from a narrative failure. The save is best effort.
func (e *Engine) failTurn(ctx context.Context, s *game.Session, analysis string) *game.TurnResponse {
	s.IsOver = true
	s.Ending = game.EndingError
	s.Analysis = analysis
	s.UpdatedAt = time.Now()
	if err := e.store.SaveSession(ctx, s); err != nil {
		e.logger.Error("Failed to save terminated session",
			"session_id", s.ID, "error", err)
	}

	return &game.TurnResponse{
		SessionID: s.ID,
		Suspicion: s.Suspicion,
		GameOver:  true,
		Ending:    game.EndingError,
		Analysis:  analysis,
	}
}

// playerText joins the transcribed sentences into the history line for
// this turn. Silent turns produce no history entry.
func playerText(ev []evidence.SentenceEvidence) string {
	var parts []string
	for _, e := range ev {
		if t := strings.TrimSpace(e.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// GetSession returns a snapshot of the session, or (nil, nil) when it
// does not exist.
func (e *Engine) GetSession(ctx context.Context, id uuid.UUID) (*game.Session, error) {
	return e.store.LoadSession(ctx, id)
}

// ListSessions returns the ids of all stored sessions.
func (e *Engine) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	return e.store.ListSessions(ctx)
}

// RemoveSession deletes the session and its lock.
func (e *Engine) RemoveSession(ctx context.Context, id uuid.UUID) error {
	if err := e.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	e.dropLock(id)
	return nil
}
