package service

import (
	"context"
	"errors"
	"fmt"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	repo "taskmanager/internal/repository"
	"taskmanager/internal/repository/attachment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь проверяются права владения и инварианты статусов

type TaskService struct {
	tasks TaskRepository
	files AttachmentStore
}

func NewTaskService(tasks TaskRepository, files AttachmentStore) *TaskService {
	return &TaskService{
		tasks: tasks,
		files: files,
	}
}

// Create сохраняет задачу с владельцем ownerID. Пустой статус
// заменяется на todo; против enum статус при создании не проверяется -
// валидирует только UpdateStatus, это поведение исходного API.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, title, description string, status task.Status) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "empty_field")
	}

	if status == "" {
		status = task.StatusTodo
	}

	newTask := &task.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      ownerID,
	}

	if err := s.tasks.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.ID.String()),
		zap.String("user_id", ownerID.String()))
	return newTask, nil
}

func (s *TaskService) List(ctx context.Context, callerID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.tasks.GetByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// UpdateStatus меняет статус задачи. Порядок проверок фиксированный:
// валидность статуса -> существование -> владение -> мутация.
// Невалидный статус отбивается даже для несуществующей задачи.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status task.Status, callerID uuid.UUID) (*task.Task, error) {
	if !status.IsValid() {
		logger.Info("Service: Невалидный статус", zap.String("status", string(status)))
		return nil, NewInvalidStatus(string(status))
	}

	existing, err := s.getOwned(ctx, taskID, callerID, "update")
	if err != nil {
		return nil, err
	}

	existing.Status = status
	if err := s.tasks.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Статус задачи обновлён",
		zap.String("task_id", taskID.String()),
		zap.String("status", string(status)))
	return existing, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID, callerID uuid.UUID) error {
	if _, err := s.getOwned(ctx, taskID, callerID, "delete"); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(taskID.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", taskID.String()))
	return nil
}

// AttachFile кладёт байты в хранилище вложений под ключом
// <taskID>_<имя файла> и записывает путь в задачу. Повторная загрузка
// с тем же именем перезаписывает блоб - последняя запись побеждает.
func (s *TaskService) AttachFile(ctx context.Context, taskID uuid.UUID, callerID uuid.UUID, filename string, data []byte) (*task.Task, error) {
	existing, err := s.getOwned(ctx, taskID, callerID, "upload")
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s_%s", taskID.String(), attachment.SanitizeFilename(filename))
	storedPath, err := s.files.Save(ctx, key, data)
	if err != nil {
		return nil, fmt.Errorf("сохранение вложения: %w", err)
	}

	existing.Attachment = &storedPath
	if err := s.tasks.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Вложение сохранено",
		zap.String("task_id", taskID.String()),
		zap.String("path", storedPath))
	return existing, nil
}

// Stats считает задачи вызывающего по статусам. Статусы без задач
// в ответ не попадают.
func (s *TaskService) Stats(ctx context.Context, callerID uuid.UUID) (map[task.Status]int, error) {
	tasks, err := s.tasks.GetByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	stats := make(map[task.Status]int)
	for _, t := range tasks {
		stats[t.Status]++
	}
	return stats, nil
}

// getOwned - общая пара проверок: существование раньше владения
func (s *TaskService) getOwned(ctx context.Context, taskID uuid.UUID, callerID uuid.UUID, operation string) (*task.Task, error) {
	existing, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена",
				zap.String("task_id", taskID.String()),
				zap.String("operation", operation))
			return nil, NewNotFound(taskID.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if !existing.IsOwnedBy(callerID) {
		logger.Warn("Service: Попытка доступа к чужой задаче",
			zap.String("task_id", taskID.String()),
			zap.String("caller_id", callerID.String()),
			zap.String("operation", operation))
		return nil, NewForbidden(taskID.String())
	}

	return existing, nil
}
