package service

import "fmt"

// BusinessError - ошибка бизнес-логики, код мапится на HTTP-статус
// в слое handlers
type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(id string) *BusinessError {
	return NewBusinessError("NOT_FOUND", "Task not found",
		ToDetail("id", id))
}

func NewForbidden(id string) *BusinessError {
	return NewBusinessError("FORBIDDEN", "Not authorized to modify this task",
		ToDetail("id", id))
}

func NewInvalidStatus(status string) *BusinessError {
	return NewBusinessError("INVALID_STATUS",
		"Invalid status, must be one of: todo, in_progress, stuck, done",
		ToDetail("status", status))
}

func NewDuplicateEmail(email string) *BusinessError {
	return NewBusinessError("DUPLICATE_EMAIL", "Email already registered",
		ToDetail("email", email))
}

// NewInvalidCredentials намеренно один и тот же для неизвестного email
// и неверного пароля
func NewInvalidCredentials() *BusinessError {
	return NewBusinessError("INVALID_CREDENTIALS", "Invalid credentials")
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError("VALIDATION_ERROR",
		fmt.Sprintf("Invalid value for field '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason))
}
