package storage

import (
	"context"
	"sync"
	"time"

	"calculations-api/internal/models"
)

// Memory is a thread-safe in-memory store implementing the Store interface.
// It is intended for tests and deliberately keeps the implementation simple.
type Memory struct {
	mu           sync.RWMutex
	nextUserID   int64
	nextCalcID   int64
	users        map[int64]models.User
	calculations map[int64]models.Calculation
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextUserID:   1,
		nextCalcID:   1,
		users:        make(map[int64]models.User),
		calculations: make(map[int64]models.Calculation),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrUserExists
		}
	}

	user.ID = m.nextUserID
	m.nextUserID++
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateCalculation(_ context.Context, calc *models.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	calc.ID = m.nextCalcID
	m.nextCalcID++
	calc.CreatedAt = time.Now().UTC()
	m.calculations[calc.ID] = *calc
	return nil
}

func (m *Memory) ListCalculations(_ context.Context, userID int64, offset, limit int) ([]models.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := make([]models.Calculation, 0)
	for id := int64(1); id < m.nextCalcID; id++ {
		calc, ok := m.calculations[id]
		if ok && calc.UserID == userID {
			owned = append(owned, calc)
		}
	}

	if offset >= len(owned) {
		return []models.Calculation{}, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (m *Memory) GetCalculation(_ context.Context, id, userID int64) (*models.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calc, ok := m.calculations[id]
	if !ok || calc.UserID != userID {
		return nil, ErrNotFound
	}
	c := calc
	return &c, nil
}

func (m *Memory) UpdateCalculation(_ context.Context, calc *models.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.calculations[calc.ID]
	if !ok || existing.UserID != calc.UserID {
		return ErrNotFound
	}

	calc.CreatedAt = existing.CreatedAt
	m.calculations[calc.ID] = *calc
	return nil
}

func (m *Memory) DeleteCalculation(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	calc, ok := m.calculations[id]
	if !ok || calc.UserID != userID {
		return ErrNotFound
	}
	delete(m.calculations, id)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
