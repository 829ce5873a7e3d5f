package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
)

// Storage defines the interface for session persistence.
type Storage interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error

	// SaveSession persists a session
	SaveSession(ctx context.Context, s *game.Session) error

	// LoadSession retrieves a session by ID.
	// Returns (nil, nil) when the session does not exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*game.Session, error)

	// DeleteSession removes a session
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// ListSessions returns the IDs of all stored sessions
	ListSessions(ctx context.Context) ([]uuid.UUID, error)

	// Close closes the storage connection
	Close() error
}
