package models

import (
	"strings"
	"time"

	"enroll/internal/register/validate"
	"enroll/pkg/email"
)

// User is the persisted account record. PasswordHash is the bcrypt digest of
// the raw password; the raw password is never stored or returned.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// RegisterRequest is the POST /api/register body. Fields are pointers so the
// structural check can distinguish "missing" from "empty"; missing or
// non-string fields fail structurally, empty ones fail field validation.
type RegisterRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

// Structural reports whether all four required fields were present in the
// request body.
func (r *RegisterRequest) Structural() bool {
	if r == nil {
		return false
	}
	return r.FirstName != nil && r.LastName != nil && r.Email != nil && r.Password != nil
}

// Values exposes the raw field values to the shared validator.
// confirmPassword never reaches the server, so it stays empty.
func (r *RegisterRequest) Values() validate.Values {
	return validate.Values{
		FirstName: deref(r.FirstName),
		LastName:  deref(r.LastName),
		Email:     deref(r.Email),
		Password:  deref(r.Password),
	}
}

// Normalized returns the persistence-ready input: names trimmed, email
// trimmed and lowercased, password byte-for-byte untouched.
func (r *RegisterRequest) Normalized() NormalizedInput {
	return NormalizedInput{
		FirstName: strings.TrimSpace(deref(r.FirstName)),
		LastName:  strings.TrimSpace(deref(r.LastName)),
		Email:     email.Normalize(deref(r.Email)),
		Password:  deref(r.Password),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NormalizedInput is the post-validation, pre-persistence projection of a
// registration request.
type NormalizedInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegisteredUser is the non-secret projection returned on 201.
type RegisteredUser struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterData wraps the created user for the success envelope's data key.
type RegisterData struct {
	User RegisteredUser `json:"user"`
}

// Public returns the non-secret projection of a stored user.
func (u User) Public() RegisteredUser {
	return RegisteredUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
