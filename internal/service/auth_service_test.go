package service_test

import (
	"context"
	"errors"
	"testing"

	"taskmanager/internal/auth"
	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService(users *MockUserRepository) (*service.AuthService, *auth.TokenManager) {
	hasher := auth.NewPasswordHasher(auth.DefaultBcryptCost)
	tokens := auth.NewTokenManager("test-secret")
	return service.NewAuthService(users, hasher, tokens), tokens
}

// TestAuthService_Register - пароль в хранилище попадает только хэшем
func TestAuthService_Register(t *testing.T) {
	users := new(MockUserRepository)
	svc, _ := newAuthService(users)

	hasher := auth.NewPasswordHasher(auth.DefaultBcryptCost)

	users.On("GetByEmail", mock.Anything, "u1@example.com").
		Return(nil, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.Email == "u1@example.com" &&
			u.PasswordHash != "pw1" &&
			hasher.Verify("pw1", u.PasswordHash)
	})).Return(nil)

	created, err := svc.Register(context.Background(), "u1@example.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", created.Email)
	assert.NotEqual(t, uuid.Nil, created.ID)
	users.AssertExpectations(t)
}

// TestAuthService_Register_Validation тестирует пустые поля
func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "pw1"},
		{name: "empty password", email: "u1@example.com", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			svc, _ := newAuthService(users)

			_, err := svc.Register(context.Background(), tt.email, tt.password)

			var busErr *service.BusinessError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, "VALIDATION_ERROR", busErr.Code)
			// до хранилища дело не доходит
			users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// TestAuthService_Register_DuplicateEmail - дубль ловится и быстрой
// проверкой, и constraint'ом хранилища
func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Run("precheck", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newAuthService(users)

		existing := &user.User{ID: uuid.New(), Email: "u1@example.com"}
		users.On("GetByEmail", mock.Anything, "u1@example.com").
			Return(existing, nil)

		_, err := svc.Register(context.Background(), "u1@example.com", "pw1")

		var busErr *service.BusinessError
		require.ErrorAs(t, err, &busErr)
		assert.Equal(t, "DUPLICATE_EMAIL", busErr.Code)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("storage constraint", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newAuthService(users)

		users.On("GetByEmail", mock.Anything, "u1@example.com").
			Return(nil, repo.ErrNotFound)
		users.On("Create", mock.Anything, mock.Anything).
			Return(repo.ErrDuplicateEmail)

		_, err := svc.Register(context.Background(), "u1@example.com", "pw1")

		var busErr *service.BusinessError
		require.ErrorAs(t, err, &busErr)
		assert.Equal(t, "DUPLICATE_EMAIL", busErr.Code)
		users.AssertExpectations(t)
	})
}

// TestAuthService_Login - токен успешного входа несёт id пользователя
func TestAuthService_Login(t *testing.T) {
	users := new(MockUserRepository)
	svc, tokens := newAuthService(users)

	hasher := auth.NewPasswordHasher(auth.DefaultBcryptCost)
	hash, err := hasher.Hash("pw1")
	require.NoError(t, err)

	existing := &user.User{ID: uuid.New(), Email: "u1@example.com", PasswordHash: hash}
	users.On("GetByEmail", mock.Anything, "u1@example.com").
		Return(existing, nil)

	token, err := svc.Login(context.Background(), "u1@example.com", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, claims.UserID)
	users.AssertExpectations(t)
}

// TestAuthService_Login_Indistinguishable - неизвестный email и неверный
// пароль снаружи выглядят одинаково
func TestAuthService_Login_Indistinguishable(t *testing.T) {
	hasher := auth.NewPasswordHasher(auth.DefaultBcryptCost)
	hash, err := hasher.Hash("pw1")
	require.NoError(t, err)

	unknownUsers := new(MockUserRepository)
	unknownUsers.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repo.ErrNotFound)
	unknownSvc, _ := newAuthService(unknownUsers)

	_, unknownErr := unknownSvc.Login(context.Background(), "ghost@example.com", "pw1")

	wrongUsers := new(MockUserRepository)
	wrongUsers.On("GetByEmail", mock.Anything, "u1@example.com").
		Return(&user.User{ID: uuid.New(), Email: "u1@example.com", PasswordHash: hash}, nil)
	wrongSvc, _ := newAuthService(wrongUsers)

	_, wrongErr := wrongSvc.Login(context.Background(), "u1@example.com", "wrong")

	var unknownBus, wrongBus *service.BusinessError
	require.ErrorAs(t, unknownErr, &unknownBus)
	require.ErrorAs(t, wrongErr, &wrongBus)
	assert.Equal(t, "INVALID_CREDENTIALS", unknownBus.Code)
	assert.Equal(t, unknownBus.Code, wrongBus.Code)
	assert.Equal(t, unknownBus.Message, wrongBus.Message)
}

// TestAuthService_CurrentUser тестирует получение владельца токена
func TestAuthService_CurrentUser(t *testing.T) {
	users := new(MockUserRepository)
	svc, _ := newAuthService(users)

	existing := &user.User{ID: uuid.New(), Email: "u1@example.com"}
	users.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)

	got, err := svc.CurrentUser(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.Email, got.Email)

	missing := uuid.New()
	users.On("GetByID", mock.Anything, missing).Return(nil, repo.ErrNotFound)

	_, err = svc.CurrentUser(context.Background(), missing)
	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, "NOT_FOUND", busErr.Code)
	users.AssertExpectations(t)
}

// TestAuthService_Register_StorageError - инфраструктурная ошибка не
// превращается в бизнес-ошибку
func TestAuthService_Register_StorageError(t *testing.T) {
	users := new(MockUserRepository)
	svc, _ := newAuthService(users)

	users.On("GetByEmail", mock.Anything, "u1@example.com").
		Return(nil, errors.New("connection refused"))

	_, err := svc.Register(context.Background(), "u1@example.com", "pw1")
	require.Error(t, err)

	var busErr *service.BusinessError
	assert.False(t, errors.As(err, &busErr))
}
