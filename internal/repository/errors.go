package repository

import "errors"

var (
	ErrNotFound       = errors.New("запись не найдена")
	ErrDuplicateEmail = errors.New("email уже зарегистрирован")
)
