package handlers

import (
	"context"

	"taskmanager/internal/models/task"
	"taskmanager/internal/models/user"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, description string, status task.Status) (*task.Task, error)
	List(ctx context.Context, callerID uuid.UUID) ([]*task.Task, error)
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status task.Status, callerID uuid.UUID) (*task.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID, callerID uuid.UUID) error
	AttachFile(ctx context.Context, taskID uuid.UUID, callerID uuid.UUID, filename string, data []byte) (*task.Task, error)
	Stats(ctx context.Context, callerID uuid.UUID) (map[task.Status]int, error)
}
