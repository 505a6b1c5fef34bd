// Package service implements the registration operation: validate,
// normalize, check uniqueness, hash, insert.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"enroll/internal/platform/metrics"
	"enroll/internal/register/models"
	"enroll/internal/register/store"
	"enroll/internal/register/validate"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/sentinel"
	"enroll/pkg/requestcontext"
)

// DefaultBcryptCost is deliberately expensive; lower it only in tests.
const DefaultBcryptCost = 12

type Service struct {
	users      store.UserStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
	bcryptCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBcryptCost overrides the hashing work factor. Tests use bcrypt.MinCost
// to stay fast.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(users store.UserStore, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}

	svc := &Service{
		users:      users,
		logger:     slog.Default(),
		bcryptCost: DefaultBcryptCost,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register runs the full registration pipeline. Errors are always domain
// errors ready for transport translation; internal causes stay wrapped for
// the logs.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (models.RegisteredUser, error) {
	if !req.Structural() {
		return s.reject(dErrors.New(dErrors.CodeBadRequest, "Invalid input data"))
	}

	// The shared validator mirrors the client exactly; first failing field
	// short-circuits.
	values := req.Values()
	for _, field := range validate.ServerFields {
		if msg := validate.Check(field, values.Get(field), values.Password); msg != nil {
			return s.reject(dErrors.NewField(dErrors.CodeValidation, string(field), msg.Text))
		}
	}

	input := req.Normalized()

	// Early-exit pre-check only. The store's unique constraint remains the
	// authoritative guard; Insert below can still report a collision.
	_, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return s.reject(dErrors.NewField(dErrors.CodeConflict, string(validate.FieldEmail), validate.MsgEmailTaken))
	case !errors.Is(err, sentinel.ErrNotFound):
		s.logger.ErrorContext(ctx, "uniqueness pre-check failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return s.reject(dErrors.Wrap(err, dErrors.CodeInternal, "uniqueness check failed"))
	}

	// Hash the raw, untrimmed password.
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "password hashing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return s.reject(dErrors.Wrap(err, dErrors.CodeInternal, "password hashing failed"))
	}

	stored, err := s.users.Insert(ctx, models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Lost the race on the unique constraint; same 409 as the
			// pre-check.
			return s.reject(dErrors.NewField(dErrors.CodeConflict, string(validate.FieldEmail), validate.MsgEmailTaken))
		}
		s.logger.ErrorContext(ctx, "user insert failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return s.reject(dErrors.Wrap(err, dErrors.CodeInternal, "user insert failed"))
	}

	s.metrics.IncrementUsersCreated()
	s.logger.InfoContext(ctx, "user registered",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", stored.ID,
	)
	return stored.Public(), nil
}

func (s *Service) reject(err *dErrors.Error) (models.RegisteredUser, error) {
	s.metrics.IncrementRegistrationFailure(string(err.Code))
	return models.RegisteredUser{}, err
}
