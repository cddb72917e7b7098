package inmemory

import (
	"context"
	"sync"
	"time"

	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// уникальность email проверяется под write-блокировкой,
	// поэтому гонка двух одинаковых регистраций здесь невозможна
	if _, ok := s.byEmail[userToCreate.Email]; ok {
		return repo.ErrDuplicateEmail
	}

	userToCreate.CreatedAt = time.Now()
	s.storage[userToCreate.ID] = userToCreate
	s.byEmail[userToCreate.Email] = userToCreate.ID
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.storage[id], nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	userToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return userToGet, nil
}
