package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"enroll/internal/platform/metrics"
	"enroll/internal/register/models"
	"enroll/internal/register/store/user"
	"enroll/internal/register/validate"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/sentinel"
)

func newTestService(t *testing.T) (*Service, *user.InMemory) {
	t.Helper()
	users := user.NewInMemory()
	svc, err := New(users, testOptions()...)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc, users
}

// testOptions keeps hashing cheap and metrics isolated per test.
func testOptions() []Option {
	return []Option{
		WithBcryptCost(bcrypt.MinCost),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	}
}

func str(s string) *string { return &s }

func validRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		FirstName: str("John"),
		LastName:  str("Doe"),
		Email:     str("john@gmail.com"),
		Password:  str("Password123!"),
	}
}

func TestRegisterSuccess(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	req := validRequest()
	req.FirstName = str("  John ")
	req.Email = str("  John@GMAIL.com ")

	registered, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if registered.ID != 1 {
		t.Fatalf("expected sequential id 1, got %d", registered.ID)
	}
	if registered.FirstName != "John" {
		t.Fatalf("expected trimmed first name, got %q", registered.FirstName)
	}
	if registered.Email != "john@gmail.com" {
		t.Fatalf("expected normalized email, got %q", registered.Email)
	}
	if registered.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be assigned")
	}

	stored, err := users.FindByEmail(ctx, "john@gmail.com")
	if err != nil {
		t.Fatalf("expected stored user: %v", err)
	}
	if stored.PasswordHash == "Password123!" {
		t.Fatalf("raw password must never be stored")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Password123!")); err != nil {
		t.Fatalf("stored hash does not verify against raw password: %v", err)
	}
}

func TestRegisterStructuralFailure(t *testing.T) {
	svc, _ := newTestService(t)

	req := validRequest()
	req.Password = nil

	_, err := svc.Register(context.Background(), req)
	if !dErrors.Is(err, dErrors.CodeBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if dErrors.FieldOf(err) != dErrors.FieldGeneral {
		t.Fatalf("structural failures are scoped to general, got %q", dErrors.FieldOf(err))
	}
}

func TestRegisterValidationShortCircuits(t *testing.T) {
	svc, _ := newTestService(t)

	// Everything invalid; firstName must win because fields validate in
	// display order.
	req := &models.RegisterRequest{
		FirstName: str(""),
		LastName:  str(""),
		Email:     str("bad"),
		Password:  str("short"),
	}
	_, err := svc.Register(context.Background(), req)
	if !dErrors.Is(err, dErrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if dErrors.FieldOf(err) != string(validate.FieldFirstName) {
		t.Fatalf("expected firstName to fail first, got field %q", dErrors.FieldOf(err))
	}
}

func TestRegisterRejectsNonGmail(t *testing.T) {
	svc, _ := newTestService(t)

	req := validRequest()
	req.Email = str("john@yahoo.com")

	_, err := svc.Register(context.Background(), req)
	if !dErrors.Is(err, dErrors.CodeValidation) || dErrors.FieldOf(err) != "email" {
		t.Fatalf("expected email-scoped validation error, got %v", err)
	}

	var de *dErrors.Error
	if !errors.As(err, &de) || de.Message != validate.MsgEmailNotGmail {
		t.Fatalf("expected %q, got %v", validate.MsgEmailNotGmail, err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRequest()); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}

	// Identical resubmission: 409, not a second record.
	_, err := svc.Register(ctx, validRequest())
	if !dErrors.Is(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if dErrors.FieldOf(err) != "email" {
		t.Fatalf("conflict must be scoped to email, got %q", dErrors.FieldOf(err))
	}

	// Case-folded variant collides too.
	req := validRequest()
	req.Email = str("JOHN@GMAIL.COM")
	if _, err := svc.Register(ctx, req); !dErrors.Is(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict for case-folded duplicate, got %v", err)
	}
}

// racingStore reports no user on the pre-check but loses the race at insert
// time, the way a concurrent request does against the unique constraint.
type racingStore struct{}

func (racingStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return models.User{}, sentinel.ErrNotFound
}

func (racingStore) Insert(ctx context.Context, u models.User) (models.User, error) {
	return models.User{}, sentinel.ErrAlreadyUsed
}

func TestRegisterInsertRaceMapsToConflict(t *testing.T) {
	svc, err := New(racingStore{}, testOptions()...)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	_, err = svc.Register(context.Background(), validRequest())
	if !dErrors.Is(err, dErrors.CodeConflict) {
		t.Fatalf("expected duplicate-key violation to map to conflict, got %v", err)
	}
	if dErrors.FieldOf(err) != "email" {
		t.Fatalf("expected email scope, got %q", dErrors.FieldOf(err))
	}
}

// failingStore simulates a store outage.
type failingStore struct{}

func (failingStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return models.User{}, errors.New("connection refused")
}

func (failingStore) Insert(ctx context.Context, u models.User) (models.User, error) {
	return models.User{}, errors.New("connection refused")
}

func TestRegisterStoreFailureIsInternal(t *testing.T) {
	svc, err := New(failingStore{}, testOptions()...)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	_, err = svc.Register(context.Background(), validRequest())
	if !dErrors.Is(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
