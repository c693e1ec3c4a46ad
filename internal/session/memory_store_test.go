package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marathonfantasy/internal/session"
)

func insertPlayer(t *testing.T, store *session.MemoryStore, gameID, playerCode string) *session.Session {
	t.Helper()
	s := &session.Session{
		Token:      uuid.NewString(),
		Type:       session.TypePlayer,
		GameID:     gameID,
		PlayerCode: playerCode,
		IsActive:   true,
		ExpiresAt:  time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, store.Insert(context.Background(), s, session.ClientMeta{}))
	return s
}

func TestMemoryStoreCheckAndTouch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("touches an active unexpired row", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s := insertPlayer(t, store, "G1", "P1")

		touchAt := time.Now().Add(time.Hour)
		got, err := store.CheckAndTouch(ctx, s.Token, touchAt)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		assert.Equal(t, touchAt, got.LastActivity)
	})

	t.Run("returns a suspended row untouched", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s := insertPlayer(t, store, "G1", "P1")
		_, err := store.ToggleByToken(ctx, s.Token)
		require.NoError(t, err)

		before, err := store.CheckAndTouch(ctx, s.Token, time.Now())
		require.NoError(t, err)
		after, err := store.CheckAndTouch(ctx, s.Token, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, after.IsActive)
		assert.Equal(t, before.LastActivity, after.LastActivity)
	})

	t.Run("missing row errors", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		_, err := store.CheckAndTouch(ctx, uuid.NewString(), time.Now())
		require.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestMemoryStoreDeactivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()
	s := insertPlayer(t, store, "G1", "P1")

	require.NoError(t, store.Deactivate(ctx, s.Token))
	// Conditional on is_active, so the second call is a no-op miss.
	require.ErrorIs(t, store.Deactivate(ctx, s.Token), session.ErrNotFound)
}

func TestMemoryStoreExtendActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stacks days on the stored expiry", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s := insertPlayer(t, store, "G1", "P1")

		expiresAt, err := store.ExtendActive(ctx, s.Token, 10)
		require.NoError(t, err)
		assert.Equal(t, s.ExpiresAt.Add(10*24*time.Hour), expiresAt)
	})

	t.Run("refuses suspended rows", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s := insertPlayer(t, store, "G1", "P1")
		require.NoError(t, store.Deactivate(ctx, s.Token))

		_, err := store.ExtendActive(ctx, s.Token, 10)
		require.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestMemoryStorePairLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("toggle picks earliest created and reports candidates", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		first := insertPlayer(t, store, "G1", "P1")
		insertPlayer(t, store, "G1", "P1")

		got, candidates, err := store.ToggleByGamePlayer(ctx, "G1", "P1")
		require.NoError(t, err)
		assert.Equal(t, first.Token, got.Token)
		assert.Equal(t, 2, candidates)
		assert.False(t, got.IsActive)
	})

	t.Run("delete removes only the earliest match", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		first := insertPlayer(t, store, "G1", "P1")
		second := insertPlayer(t, store, "G1", "P1")

		got, candidates, err := store.DeleteByGamePlayer(ctx, "G1", "P1")
		require.NoError(t, err)
		assert.Equal(t, first.Token, got.Token)
		assert.Equal(t, 2, candidates)
		assert.Equal(t, 1, store.Len())

		remaining, err := store.GetActiveByToken(ctx, second.Token)
		require.NoError(t, err)
		assert.Equal(t, second.Token, remaining.Token)
	})

	t.Run("non-player sessions never match the pair", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s := &session.Session{
			Token:      uuid.NewString(),
			Type:       session.TypeCommissioner,
			GameID:     "G1",
			PlayerCode: "P1",
			IsActive:   true,
			ExpiresAt:  time.Now().Add(24 * time.Hour),
		}
		require.NoError(t, store.Insert(ctx, s, session.ClientMeta{}))

		_, _, err := store.ToggleByGamePlayer(ctx, "G1", "P1")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("no match errors", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		_, _, err := store.DeleteByGamePlayer(ctx, "G1", "P1")
		require.ErrorIs(t, err, session.ErrNotFound)
	})
}
