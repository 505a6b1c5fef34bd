package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"enroll/internal/register/models"
	"enroll/pkg/platform/sentinel"
)

// Schema is the user table DDL. The unique index on email is the
// authoritative uniqueness guard (the service-level pre-check is only an
// early exit); Insert lowercases the email so the index compares
// case-insensitively.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const uniqueViolation = "23505"

// PostgresStore persists user records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindByEmail(ctx context.Context, normalizedEmail string) (models.User, error) {
	const query = `
		SELECT id, first_name, last_name, email, password_hash, created_at
		FROM users
		WHERE email = lower($1)`

	var user models.User
	err := s.pool.QueryRow(ctx, query, normalizedEmail).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) Insert(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (first_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	// The unique index compares stored values byte for byte, so uniqueness
	// is case-insensitive only if the store lowercases on the way in.
	user.Email = strings.ToLower(user.Email)

	err := s.pool.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, sentinel.ErrAlreadyUsed
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}
