package inmemory_test

import (
	"context"
	"testing"

	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"
	"taskmanager/internal/repository/user/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserStorage_CreateAndGet тестирует запись и оба способа чтения
func TestUserStorage_CreateAndGet(t *testing.T) {
	storage := inmemory.NewUserStorage()
	ctx := context.Background()

	u := &user.User{ID: uuid.New(), Email: "u1@example.com", PasswordHash: "hash"}
	require.NoError(t, storage.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := storage.GetByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := storage.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", byID.Email)
}

// TestUserStorage_DuplicateEmail - второй пользователь с тем же email
// не проходит
func TestUserStorage_DuplicateEmail(t *testing.T) {
	storage := inmemory.NewUserStorage()
	ctx := context.Background()

	first := &user.User{ID: uuid.New(), Email: "u1@example.com"}
	require.NoError(t, storage.Create(ctx, first))

	second := &user.User{ID: uuid.New(), Email: "u1@example.com"}
	err := storage.Create(ctx, second)
	assert.ErrorIs(t, err, repo.ErrDuplicateEmail)

	// первый пользователь не затёрт
	existing, err := storage.GetByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)
}

// TestUserStorage_NotFound тестирует чтение несуществующих записей
func TestUserStorage_NotFound(t *testing.T) {
	storage := inmemory.NewUserStorage()
	ctx := context.Background()

	_, err := storage.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = storage.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
