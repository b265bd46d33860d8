package storage

import (
	"context"
	"errors"

	"calculations-api/internal/models"
)

var (
	// ErrNotFound is returned both when a row does not exist and when it
	// exists but belongs to another user. Callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")

	// ErrUserExists is returned when the username or email unique
	// constraint rejects an insert.
	ErrUserExists = errors.New("username or email already registered")
)

// Store persists users and their calculations. Every calculation lookup is
// filtered on the owning user id; the uniqueness and ownership constraints of
// the underlying database are the authoritative guards.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateCalculation(ctx context.Context, calc *models.Calculation) error
	ListCalculations(ctx context.Context, userID int64, offset, limit int) ([]models.Calculation, error)
	GetCalculation(ctx context.Context, id, userID int64) (*models.Calculation, error)
	UpdateCalculation(ctx context.Context, calc *models.Calculation) error
	DeleteCalculation(ctx context.Context, id, userID int64) error

	Close() error
}
