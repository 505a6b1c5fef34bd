package user

import (
	"context"
	"strings"
	"sync"

	"enroll/internal/register/models"
	"enroll/pkg/platform/sentinel"
	"enroll/pkg/requestcontext"
)

// InMemory is a mutex-guarded user store for development and tests. Email
// uniqueness is case-insensitive; IDs are assigned sequentially the way the
// relational store's BIGSERIAL column would.
type InMemory struct {
	mu     sync.Mutex
	byMail map[string]models.User
	nextID int64
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		byMail: make(map[string]models.User),
		nextID: 1,
	}
}

func (s *InMemory) FindByEmail(ctx context.Context, normalizedEmail string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byMail[strings.ToLower(normalizedEmail)]
	if !ok {
		return models.User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (s *InMemory) Insert(ctx context.Context, user models.User) (models.User, error) {
	key := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byMail[key]; exists {
		return models.User{}, sentinel.ErrAlreadyUsed
	}

	user.ID = s.nextID
	s.nextID++
	user.Email = key
	user.CreatedAt = requestcontext.Now(ctx)
	s.byMail[key] = user
	return user, nil
}

// Count reports the number of stored users. Test helper.
func (s *InMemory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byMail)
}
