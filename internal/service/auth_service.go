package service

import (
	"context"
	"errors"
	"fmt"

	"taskmanager/internal/auth"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users  UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
}

func NewAuthService(users UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register создаёт пользователя. Проверка на существующий email перед
// вставкой - быстрый путь; настоящая гарантия уникальности - constraint
// в хранилище, его нарушение тоже приходит как DUPLICATE_EMAIL.
func (s *AuthService) Register(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" {
		return nil, NewValidationError("email", "empty_field")
	}
	if password == "" {
		return nil, NewValidationError("password", "empty_field")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		logger.Info("Service: Email уже зарегистрирован", zap.String("email", email))
		return nil, NewDuplicateEmail(email)
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("проверка email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, NewDuplicateEmail(email)
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("user_id", newUser.ID.String()))
	return newUser, nil
}

// Login выдаёт токен с claim userId. Неизвестный email и неверный
// пароль снаружи неразличимы.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Попытка входа с неизвестным email")
			return "", NewInvalidCredentials()
		}
		return "", fmt.Errorf("получение пользователя: %w", err)
	}

	if !s.hasher.Verify(password, existing.PasswordHash) {
		logger.Info("Service: Неверный пароль", zap.String("user_id", existing.ID.String()))
		return "", NewInvalidCredentials()
	}

	token, err := s.tokens.Issue(existing.ID)
	if err != nil {
		return "", fmt.Errorf("выпуск токена: %w", err)
	}

	logger.Info("Service: Успешный вход", zap.String("user_id", existing.ID.String()))
	return token, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewBusinessError("NOT_FOUND", "User not found",
				ToDetail("id", id.String()))
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return existing, nil
}
