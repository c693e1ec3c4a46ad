package session

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/marathonfantasy/pkg/pg"
)

// PGStore persists sessions in PostgreSQL. Every transition is one
// conditional statement so concurrent toggles, extensions and deletes on the
// same row cannot lose updates.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed session store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const sessionColumns = `id, token, session_type, display_name, game_id, player_code, is_active, expires_at, created_at, last_activity`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.Token, &s.Type, &s.DisplayName, &s.GameID, &s.PlayerCode,
		&s.IsActive, &s.ExpiresAt, &s.CreatedAt, &s.LastActivity)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (st *PGStore) Insert(ctx context.Context, s *Session, meta ClientMeta) error {
	row := st.pool.QueryRow(ctx, `
		INSERT INTO sessions (token, session_type, display_name, game_id, player_code, is_active, expires_at, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, last_activity`,
		s.Token, s.Type, s.DisplayName, s.GameID, s.PlayerCode, s.IsActive, s.ExpiresAt, meta.IP, meta.UserAgent)
	return row.Scan(&s.ID, &s.CreatedAt, &s.LastActivity)
}

func (st *PGStore) GetActiveByToken(ctx context.Context, token string) (*Session, error) {
	return scanSession(st.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE token = $1 AND is_active`, token))
}

func (st *PGStore) Deactivate(ctx context.Context, token string) error {
	tag, err := st.pool.Exec(ctx, `
		UPDATE sessions SET is_active = FALSE
		WHERE token = $1 AND is_active`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckAndTouch updates last_activity only for a currently valid row but
// still returns an existing invalid row, all in one statement, so the caller
// can distinguish missing (error) from present-but-invalid (value).
func (st *PGStore) CheckAndTouch(ctx context.Context, token string, now time.Time) (*Session, error) {
	return scanSession(st.pool.QueryRow(ctx, `
		WITH touched AS (
			UPDATE sessions SET last_activity = $2
			WHERE token = $1 AND is_active AND expires_at > $2
			RETURNING `+sessionColumns+`
		)
		SELECT `+sessionColumns+` FROM touched
		UNION ALL
		SELECT `+sessionColumns+` FROM sessions
		WHERE token = $1 AND NOT EXISTS (SELECT 1 FROM touched)`,
		token, now))
}

func (st *PGStore) ExtendActive(ctx context.Context, token string, days int) (time.Time, error) {
	var expiresAt time.Time
	err := st.pool.QueryRow(ctx, `
		UPDATE sessions
		SET expires_at = expires_at + make_interval(days => $2)
		WHERE token = $1 AND is_active
		RETURNING expires_at`, token, days).Scan(&expiresAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return expiresAt, nil
}

func (st *PGStore) ToggleByToken(ctx context.Context, token string) (*Session, error) {
	return scanSession(st.pool.QueryRow(ctx, `
		UPDATE sessions
		SET is_active = NOT is_active, last_activity = now()
		WHERE token = $1
		RETURNING `+sessionColumns, token))
}

func (st *PGStore) ToggleByGamePlayer(ctx context.Context, gameID, playerCode string) (*Session, int, error) {
	var candidates int
	if err := st.pool.QueryRow(ctx, `
		SELECT count(*) FROM sessions
		WHERE game_id = $1 AND player_code = $2 AND session_type = 'player'`,
		gameID, playerCode).Scan(&candidates); err != nil {
		return nil, 0, err
	}

	s, err := scanSession(st.pool.QueryRow(ctx, `
		UPDATE sessions
		SET is_active = NOT is_active, last_activity = now()
		WHERE id = (
			SELECT id FROM sessions
			WHERE game_id = $1 AND player_code = $2 AND session_type = 'player'
			ORDER BY created_at
			LIMIT 1
		)
		RETURNING `+sessionColumns, gameID, playerCode))
	if err != nil {
		return nil, candidates, err
	}
	return s, candidates, nil
}

func (st *PGStore) DeleteByToken(ctx context.Context, token string) (*Session, error) {
	return scanSession(st.pool.QueryRow(ctx, `
		DELETE FROM sessions
		WHERE token = $1
		RETURNING `+sessionColumns, token))
}

func (st *PGStore) DeleteByGamePlayer(ctx context.Context, gameID, playerCode string) (*Session, int, error) {
	var candidates int
	if err := st.pool.QueryRow(ctx, `
		SELECT count(*) FROM sessions
		WHERE game_id = $1 AND player_code = $2 AND session_type = 'player'`,
		gameID, playerCode).Scan(&candidates); err != nil {
		return nil, 0, err
	}

	s, err := scanSession(st.pool.QueryRow(ctx, `
		DELETE FROM sessions
		WHERE id = (
			SELECT id FROM sessions
			WHERE game_id = $1 AND player_code = $2 AND session_type = 'player'
			ORDER BY created_at
			LIMIT 1
		)
		RETURNING `+sessionColumns, gameID, playerCode))
	if err != nil {
		return nil, candidates, err
	}
	return s, candidates, nil
}
