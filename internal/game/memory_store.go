package game

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	games map[string]*Game
}

// NewMemoryStore creates an empty in-memory game store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*Game)}
}

func (st *MemoryStore) EnsureWithPlayer(ctx context.Context, gameID, playerCode string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	g, ok := st.games[gameID]
	if !ok {
		st.games[gameID] = &Game{
			ID:          gameID,
			PlayerCodes: []string{playerCode},
			CreatedAt:   time.Now(),
		}
		return nil
	}

	if !slices.Contains(g.PlayerCodes, playerCode) {
		g.PlayerCodes = append(g.PlayerCodes, playerCode)
	}
	return nil
}

func (st *MemoryStore) Get(ctx context.Context, gameID string) (*Game, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	g, ok := st.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	cp.PlayerCodes = slices.Clone(g.PlayerCodes)
	return &cp, nil
}
