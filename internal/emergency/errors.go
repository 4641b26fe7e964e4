package emergency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrAuthentication      = errors.New("not authenticated")
	ErrConflict            = errors.New("active emergency already exists")
	ErrNetwork             = errors.New("backend request failed")

	ErrHoldDebounced  = errors.New("hold start debounced")
	ErrHoldInProgress = errors.New("hold already in progress")
	ErrHoldInhibited  = errors.New("hold inhibited")
)

// ValidationError - отсутствующие или некорректные поля профиля
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("validation failed: %s: %s", strings.Join(e.Fields, ", "), e.Reason)
	}
	return fmt.Sprintf("validation failed: missing fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError - у субъекта уже есть активный вызов
type ConflictError struct {
	ID     uuid.UUID
	Status models.Status
}

func (e *ConflictError) Error() string {
	if e.Status == "" {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("%s: status %s", ErrConflict.Error(), e.Status)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NetworkError - непрозрачная ошибка бэкенда
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNetwork.Error(), e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// isDuplicate распознает отказ бэкенда из-за дубликата по тексту ошибки
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "already exists")
}
