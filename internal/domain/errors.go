package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound запись (лог, год, доза) отсутствует в хранилище
	ErrNotFound = errors.New("not found")
	// ErrSubstanceNotFound внешний справочник не нашёл вещество
	ErrSubstanceNotFound = errors.New("substance not found")
	// ErrDuplicateCommand команда с таким именем уже зарегистрирована
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrStateExpired состояние пагинации истекло или удалено
	ErrStateExpired = errors.New("pagination state expired")
	// ErrNotOwner листать страницы может только тот, кто вызвал команду
	ErrNotOwner = errors.New("not the owner of the menu")
	// ErrConflict запись изменилась между чтением и записью
	ErrConflict = errors.New("concurrent modification")
	// ErrUnavailable функциональность не сконфигурирована
	ErrUnavailable = errors.New("feature unavailable")
)

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}

// ValidationError ошибка аргументов команды, текст показывается пользователю как есть
type ValidationError struct {
	Option  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Option == "" {
		return e.Message
	}
	return fmt.Sprintf("option %s: %s", e.Option, e.Message)
}

func NewValidationError(option, format string, args ...any) *ValidationError {
	return &ValidationError{
		Option:  option,
		Message: fmt.Sprintf(format, args...),
	}
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
