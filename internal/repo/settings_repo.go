package repo

import (
	"context"
	"database/sql"
	"time"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM settings WHERE key = $1`
	var value string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO settings (key, value, mtime) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query, key, value, time.Now().Unix())
	return err
}
