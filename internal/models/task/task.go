package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Attachment  *string    `json:"attachment,omitempty" db:"attachment"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

type Status string

const StatusTodo Status = "todo"
const StatusInProgress Status = "in_progress"
const StatusStuck Status = "stuck"
const StatusDone Status = "done"

// IsValid проверяет, что статус входит в фиксированный набор
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusStuck, StatusDone:
		return true
	}
	return false
}

// IsOwnedBy - у задачи ровно один владелец, назначается при создании
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}
