package user

import (
	"context"
	"errors"

	"enroll/internal/register/models"
	"enroll/internal/register/store"
	"enroll/internal/register/validate"
	"enroll/pkg/platform/sentinel"
)

// SeedReserved inserts the reserved sentinel account so the store-level
// uniqueness path stays exercisable even though the shared validator already
// rejects the address. Idempotent.
func SeedReserved(ctx context.Context, s store.UserStore) error {
	_, err := s.Insert(ctx, models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        validate.ReservedAddress,
		PasswordHash: "!", // never a valid bcrypt digest; account cannot authenticate
	})
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return nil
	}
	return err
}
