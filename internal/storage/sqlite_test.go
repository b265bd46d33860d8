package storage

import (
	"context"
	"path/filepath"
	"testing"

	"calculations-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newStoredUser(t *testing.T, store *SQLiteStorage, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestSQLiteUserUniqueness(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	newStoredUser(t, store, "alice")

	t.Run("duplicate username", func(t *testing.T) {
		err := store.CreateUser(ctx, &models.User{
			Username: "alice", Email: "second@example.com", PasswordHash: "hashed",
		})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := store.CreateUser(ctx, &models.User{
			Username: "alice2", Email: "alice@example.com", PasswordHash: "hashed",
		})
		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestSQLiteGetUserByUsername(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	created := newStoredUser(t, store, "alice")
	require.NotZero(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	user, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashed", user.PasswordHash)
	assert.Equal(t, created.CreatedAt, user.CreatedAt)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteCalculationOwnership(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	alice := newStoredUser(t, store, "alice")
	bob := newStoredUser(t, store, "bob")

	calc := &models.Calculation{Operation: "add", Operand1: 10, Operand2: 5, Result: 15, UserID: alice.ID}
	require.NoError(t, store.CreateCalculation(ctx, calc))
	require.NotZero(t, calc.ID)

	t.Run("owner can read", func(t *testing.T) {
		got, err := store.GetCalculation(ctx, calc.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 15.0, got.Result)
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := store.GetCalculation(ctx, calc.ID, bob.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other user cannot update", func(t *testing.T) {
		foreign := *calc
		foreign.UserID = bob.ID
		foreign.Result = 0
		assert.ErrorIs(t, store.UpdateCalculation(ctx, &foreign), ErrNotFound)
	})

	t.Run("other user cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteCalculation(ctx, calc.ID, bob.ID), ErrNotFound)
	})

	t.Run("browse is owner scoped", func(t *testing.T) {
		calcs, err := store.ListCalculations(ctx, bob.ID, 0, 100)
		require.NoError(t, err)
		assert.Empty(t, calcs)
	})
}

func TestSQLiteListPagination(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	alice := newStoredUser(t, store, "alice")

	for i := 1; i <= 5; i++ {
		calc := &models.Calculation{Operation: "add", Operand1: float64(i), Operand2: 0, Result: float64(i), UserID: alice.ID}
		require.NoError(t, store.CreateCalculation(ctx, calc))
	}

	page, err := store.ListCalculations(ctx, alice.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 3.0, page[0].Result)
	assert.Equal(t, 4.0, page[1].Result)

	tail, err := store.ListCalculations(ctx, alice.ID, 4, 100)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, 5.0, tail[0].Result)
}

func TestSQLiteUpdateAndDelete(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	alice := newStoredUser(t, store, "alice")

	calc := &models.Calculation{Operation: "add", Operand1: 10, Operand2: 5, Result: 15, UserID: alice.ID}
	require.NoError(t, store.CreateCalculation(ctx, calc))

	calc.Operation = "multiply"
	calc.Result = 50
	require.NoError(t, store.UpdateCalculation(ctx, calc))

	got, err := store.GetCalculation(ctx, calc.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "multiply", got.Operation)
	assert.Equal(t, 50.0, got.Result)
	assert.Equal(t, calc.CreatedAt, got.CreatedAt)

	require.NoError(t, store.DeleteCalculation(ctx, calc.ID, alice.ID))
	_, err = store.GetCalculation(ctx, calc.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteCalculation(ctx, calc.ID, alice.ID), ErrNotFound)
}
