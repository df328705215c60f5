package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the users table if it does not exist yet. The service
// owns a single table, so a startup statement beats a migration toolchain.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                    UUID PRIMARY KEY,
			name                  TEXT NOT NULL,
			email                 TEXT NOT NULL UNIQUE,
			password_hash         TEXT NOT NULL,
			reset_code            TEXT,
			reset_code_expires_at TIMESTAMPTZ,
			created_at            TIMESTAMPTZ NOT NULL,
			updated_at            TIMESTAMPTZ NOT NULL
		)
	`)

	return err
}
