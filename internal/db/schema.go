package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and indexes the API needs. It runs once
// at startup and every statement is idempotent, so repeated boots are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		// the unique index closes the register check-then-insert race:
		// concurrent duplicates surface as a 23505 instead of two rows
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_uniq ON users (email)`,
		`CREATE TABLE IF NOT EXISTS crops (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			price       NUMERIC NOT NULL,
			image       TEXT,
			created_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			crop_id    TEXT NOT NULL,
			quantity   INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
