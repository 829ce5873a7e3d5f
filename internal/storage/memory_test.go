package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := game.NewSession("cult_ritual.json")
	s.History = append(s.History, game.DialogTurn{Role: game.RolePlayer, Text: "hello"})
	require.NoError(t, store.SaveSession(ctx, s))

	loaded, err := store.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, s.History, loaded.History)
}

func TestMemoryStoreMissingSession(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := game.NewSession("cult_ritual.json")
	require.NoError(t, store.SaveSession(ctx, s))

	// Mutating the original after save must not affect the stored copy.
	s.Suspicion = 9
	s.History = append(s.History, game.DialogTurn{Role: game.RolePlayer, Text: "late edit"})

	loaded, err := store.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.SuspicionDefault, loaded.Suspicion)
	assert.Empty(t, loaded.History)

	// Mutating a loaded copy must not affect the store either.
	loaded.Suspicion = 2
	again, err := store.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.SuspicionDefault, again.Suspicion)
}

func TestMemoryStoreDeleteAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := game.NewSession("cult_ritual.json")
	b := game.NewSession("cult_ritual.json")
	require.NoError(t, store.SaveSession(ctx, a))
	require.NoError(t, store.SaveSession(ctx, b))

	ids, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)

	require.NoError(t, store.DeleteSession(ctx, a.ID))
	loaded, err := store.LoadSession(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting a missing session is not an error.
	require.NoError(t, store.DeleteSession(ctx, a.ID))
}
