package postgres

import (
	"context"
	"errors"

	"github.com/agroconnect/marketplace/internal/domain/user"
	"github.com/agroconnect/marketplace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, password_hash, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Create inserts the user and relies on the unique email index for
// duplicate detection, so two concurrent registrations cannot both win.
func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return err
	}

	return nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	var affected int64

	err := r.observe("users.update_password", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE users
			 SET password_hash = $2, updated_at = NOW()
			 WHERE email = $1`,
			email, passwordHash,
		)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}
