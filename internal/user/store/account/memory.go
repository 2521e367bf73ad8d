package account

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"signup/internal/user/models"
	"signup/pkg/platform/sentinel"
)

// InMemory is a process-local account store. Create checks and inserts under
// one lock, so email uniqueness holds under concurrent registrations.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Account
	byEmail map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[uuid.UUID]*models.Account),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create stores a copy of account. Returns sentinel.ErrAlreadyUsed when the
// email is taken.
func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[account.Email]; taken {
		return fmt.Errorf("email %w", sentinel.ErrAlreadyUsed)
	}
	stored := *account
	s.byID[account.ID] = &stored
	s.byEmail[account.Email] = account.ID
	return nil
}

// FindByEmail matches the address exactly (case-sensitive).
func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *s.byID[id]
	return &found, nil
}

// FindAll returns every account ordered by creation time.
func (s *InMemory) FindAll(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Account, 0, len(s.byID))
	for _, a := range s.byID {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[uuid.UUID]*models.Account)
	s.byEmail = make(map[string]uuid.UUID)
	return nil
}
