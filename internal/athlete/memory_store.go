package athlete

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	athletes []Athlete
}

// NewMemoryStore creates a memory store seeded with the given athletes.
func NewMemoryStore(athletes ...Athlete) *MemoryStore {
	return &MemoryStore{athletes: athletes}
}

func (st *MemoryStore) List(ctx context.Context, gender string, limit int) ([]Athlete, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var out []Athlete
	for _, a := range st.athletes {
		if a.Gender == gender && a.MarathonRank > 0 {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarathonRank < out[j].MarathonRank })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
