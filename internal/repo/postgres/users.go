package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/surpriselly/authsvc/internal/domain/user"
	"github.com/surpriselly/authsvc/internal/observability"
	"github.com/surpriselly/authsvc/internal/repo"
)

const uniqueViolation = "23505"

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
			`SELECT id, name, email, password_hash, reset_code, reset_code_expires_at, created_at, updated_at
             FROM users
             WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.ResetCode,
			&u.ResetCodeExp,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, repo.ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, password_hash, reset_code, reset_code_expires_at, created_at, updated_at
             FROM users
             WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.ResetCode,
			&u.ResetCodeExp,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, repo.ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Create inserts a new user. passwordHash must already be hashed; plaintext
// never reaches this layer.
func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.User{}, repo.ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.exec(ctx, "users.set_reset_code",
		`UPDATE users
         SET reset_code = $2, reset_code_expires_at = $3, updated_at = $4
         WHERE id = $1`,
		id, code, expiresAt, time.Now().UTC(),
	)
}

func (r *UsersRepo) ClearResetCode(ctx context.Context, id string) error {
	return r.exec(ctx, "users.clear_reset_code",
		`UPDATE users
         SET reset_code = NULL, reset_code_expires_at = NULL, updated_at = $2
         WHERE id = $1`,
		id, time.Now().UTC(),
	)
}

// UpdatePassword swaps in the new hash and clears any pending reset code in
// the same statement, so the two can never get out of sync.
func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "users.update_password",
		`UPDATE users
         SET password_hash = $2, reset_code = NULL, reset_code_expires_at = NULL, updated_at = $3
         WHERE id = $1`,
		id, passwordHash, time.Now().UTC(),
	)
}

func (r *UsersRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	return r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx, sql, args...)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return repo.ErrUserNotFound
		}

		return nil
	})
}
