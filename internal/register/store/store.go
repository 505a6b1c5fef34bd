// Package store defines the persistence boundary for user records. The
// registration service only ever needs two operations, so the interface
// stays small and implementations (memory, Postgres) stay swappable via
// injection.
package store

import (
	"context"

	"enroll/internal/register/models"
)

// UserStore persists registration records keyed uniquely by normalized
// email.
//
// FindByEmail returns sentinel.ErrNotFound when no record exists. Insert
// assigns the sequential ID and creation timestamp, and returns
// sentinel.ErrAlreadyUsed on a uniqueness violation. The store's unique
// constraint is the authoritative guard; callers may pre-check with
// FindByEmail but must still handle ErrAlreadyUsed from Insert.
type UserStore interface {
	FindByEmail(ctx context.Context, normalizedEmail string) (models.User, error)
	Insert(ctx context.Context, user models.User) (models.User, error)
}
