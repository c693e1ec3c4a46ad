package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store used in tests and local
// development. Holding the lock for each whole transition gives it the same
// atomicity the SQL store gets from single conditional statements.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	byToken  map[string]*Session
	metaByID map[int64]ClientMeta
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		byToken:  make(map[string]*Session),
		metaByID: make(map[int64]ClientMeta),
	}
}

func (st *MemoryStore) Insert(ctx context.Context, s *Session, meta ClientMeta) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	s.ID = st.nextID
	st.nextID++
	s.CreatedAt = now
	s.LastActivity = now

	cp := *s
	st.byToken[s.Token] = &cp
	st.metaByID[s.ID] = meta
	return nil
}

func (st *MemoryStore) GetActiveByToken(ctx context.Context, token string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byToken[token]
	if !ok || !s.IsActive {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (st *MemoryStore) Deactivate(ctx context.Context, token string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byToken[token]
	if !ok || !s.IsActive {
		return ErrNotFound
	}
	s.IsActive = false
	return nil
}

func (st *MemoryStore) CheckAndTouch(ctx context.Context, token string, now time.Time) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	if s.IsActive && s.ExpiresAt.After(now) {
		s.LastActivity = now
	}
	cp := *s
	return &cp, nil
}

func (st *MemoryStore) ExtendActive(ctx context.Context, token string, days int) (time.Time, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byToken[token]
	if !ok || !s.IsActive {
		return time.Time{}, ErrNotFound
	}
	s.ExpiresAt = s.ExpiresAt.Add(time.Duration(days) * 24 * time.Hour)
	return s.ExpiresAt, nil
}

func (st *MemoryStore) ToggleByToken(ctx context.Context, token string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	s.IsActive = !s.IsActive
	s.LastActivity = time.Now()
	cp := *s
	return &cp, nil
}

func (st *MemoryStore) ToggleByGamePlayer(ctx context.Context, gameID, playerCode string) (*Session, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	matches := st.pairMatchesLocked(gameID, playerCode)
	if len(matches) == 0 {
		return nil, 0, ErrNotFound
	}
	s := matches[0]
	s.IsActive = !s.IsActive
	s.LastActivity = time.Now()
	cp := *s
	return &cp, len(matches), nil
}

func (st *MemoryStore) DeleteByToken(ctx context.Context, token string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(st.byToken, token)
	delete(st.metaByID, s.ID)
	return s, nil
}

func (st *MemoryStore) DeleteByGamePlayer(ctx context.Context, gameID, playerCode string) (*Session, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	matches := st.pairMatchesLocked(gameID, playerCode)
	if len(matches) == 0 {
		return nil, 0, ErrNotFound
	}
	s := matches[0]
	delete(st.byToken, s.Token)
	delete(st.metaByID, s.ID)
	return s, len(matches), nil
}

// Meta returns the audit metadata recorded for a session. Test helper.
func (st *MemoryStore) Meta(id int64) (ClientMeta, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	meta, ok := st.metaByID[id]
	return meta, ok
}

// Len returns the number of stored sessions. Test helper.
func (st *MemoryStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byToken)
}

// pairMatchesLocked returns player-type sessions for the pair ordered by
// creation time, matching the SQL store's earliest-created tie-break.
func (st *MemoryStore) pairMatchesLocked(gameID, playerCode string) []*Session {
	var matches []*Session
	for _, s := range st.byToken {
		if s.GameID == gameID && s.PlayerCode == playerCode && s.Type == TypePlayer {
			matches = append(matches, s)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches
}
