package service

import (
	"context"

	"taskmanager/internal/models/task"
	"taskmanager/internal/models/user"

	"github.com/google/uuid"
)

// Интерфейсы коллабораторов объявлены на стороне потребителя.
// Хранилища - единственные мутаторы персистентного состояния,
// сервисы ходят в них только после проверки прав.

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByEmail(context.Context, string) (*user.User, error)
	GetByID(context.Context, uuid.UUID) (*user.User, error)
}

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	Update(context.Context, *task.Task) error
	Delete(context.Context, uuid.UUID) error
	GetByUser(context.Context, uuid.UUID) ([]*task.Task, error)
}

type AttachmentStore interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
}
