package athlete

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore reads athletes from PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed athlete store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (st *PGStore) List(ctx context.Context, gender string, limit int) ([]Athlete, error) {
	rows, err := st.pool.Query(ctx, `
		SELECT id, name, country, gender, coalesce(wa_id, ''), marathon_rank,
			coalesce(overall_rank, 0), coalesce(marathon_time, '')
		FROM athletes
		WHERE gender = $1 AND marathon_rank IS NOT NULL
		ORDER BY marathon_rank
		LIMIT $2`, gender, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Athlete, error) {
		var a Athlete
		err := row.Scan(&a.ID, &a.Name, &a.Country, &a.Gender, &a.WorldAthleticsID,
			&a.MarathonRank, &a.OverallRank, &a.MarathonTime)
		return a, err
	})
}
