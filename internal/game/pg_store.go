package game

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/marathonfantasy/pkg/pg"
)

// PGStore persists games in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed game store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureWithPlayer is one upsert: insert the game with a singleton list, or
// append the player code only when the list does not already contain it.
func (st *PGStore) EnsureWithPlayer(ctx context.Context, gameID, playerCode string) error {
	_, err := st.pool.Exec(ctx, `
		INSERT INTO games (id, player_codes)
		VALUES ($1, ARRAY[$2])
		ON CONFLICT (id) DO UPDATE
		SET player_codes = games.player_codes || excluded.player_codes
		WHERE NOT games.player_codes @> excluded.player_codes`,
		gameID, playerCode)
	return err
}

func (st *PGStore) Get(ctx context.Context, gameID string) (*Game, error) {
	var g Game
	err := st.pool.QueryRow(ctx, `
		SELECT id, name, player_codes, created_at
		FROM games
		WHERE id = $1`, gameID).
		Scan(&g.ID, &g.Name, &g.PlayerCodes, &g.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// RosterCount returns how many roster rows remain for a (game, player) pair.
// After a hard delete of the owning session the cascade leaves zero.
func (st *PGStore) RosterCount(ctx context.Context, gameID, playerCode string) (int, error) {
	var n int
	err := st.pool.QueryRow(ctx, `
		SELECT count(*) FROM roster_entries
		WHERE game_id = $1 AND player_code = $2`,
		gameID, playerCode).Scan(&n)
	return n, err
}
