package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PreferenceRepo persists admin preferences in MySQL, one row per entry.
type PreferenceRepo struct{ DB *sql.DB }

func NewPreferenceRepo(db *sql.DB) *PreferenceRepo { return &PreferenceRepo{DB: db} }

// Load returns every entry stored for scope.
func (r *PreferenceRepo) Load(ctx context.Context, scope string) (map[string]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT pref_key, pref_value FROM admin_preferences WHERE scope=?", scope)
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

// Save upserts all entries of scope in one transaction.
func (r *PreferenceRepo) Save(ctx context.Context, scope string, entries map[string]string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO admin_preferences (scope, pref_key, pref_value) VALUES (?,?,?) ON DUPLICATE KEY UPDATE pref_value=VALUES(pref_value)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, v := range entries {
		if _, err := stmt.ExecContext(ctx, scope, k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return tx.Commit()
}
