package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgPreferenceRepo persists admin preferences in PostgreSQL.
type PgPreferenceRepo struct{ pool *pgxpool.Pool }

func NewPgPreferenceRepo(pool *pgxpool.Pool) *PgPreferenceRepo {
	return &PgPreferenceRepo{pool: pool}
}

// Load returns every entry stored for scope.
func (r *PgPreferenceRepo) Load(ctx context.Context, scope string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pref_key, pref_value FROM admin_preferences WHERE scope = $1`, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Save upserts all entries of scope in a single batch inside a transaction.
func (r *PgPreferenceRepo) Save(ctx context.Context, scope string, entries map[string]string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for k, v := range entries {
			batch.Queue(`INSERT INTO admin_preferences (scope, pref_key, pref_value, updated_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT (scope, pref_key) DO UPDATE SET pref_value = EXCLUDED.pref_value, updated_at = now()`,
				scope, k, v)
		}
		br := tx.SendBatch(ctx, batch)
		for range entries {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("save preferences: %w", err)
			}
		}
		return br.Close()
	})
}
