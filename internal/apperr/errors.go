package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/consulthub/scheduler-api/internal/model"
)

// Коды ошибок для машинной обработки на стороне клиента
const (
	CodeValidation  = "validation_failed"
	CodeConflict    = "schedule_conflict"
	CodeNotFound    = "not_found"
	CodePersistence = "persistence_failure"
)

// ValidationError структурная ошибка входных данных
type ValidationError struct {
	Field   string
	Message string
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Code() string { return CodeValidation }

// Conflict описание одного пересечения с существующим живым слотом
type Conflict struct {
	ID      int64           `json:"id"`
	Date    time.Time       `json:"date"`
	Start   model.TimeOfDay `json:"start_time"`
	End     model.TimeOfDay `json:"end_time"`
	Display string          `json:"display"`
}

// ConflictError пересечение по времени с живыми слотами того же giver.
// Conflicts может быть пустым если пересечение обнаружила только БД
// (проигрыш гонки на exclusion constraint).
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "schedule overlaps an existing live slot"
	}

	displays := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		displays = append(displays, c.Display)
	}

	return fmt.Sprintf("schedule overlaps %d existing slot(s): %s",
		len(e.Conflicts), strings.Join(displays, ", "))
}

func (e *ConflictError) Code() string { return CodeConflict }

// NotFoundError запрошенный ресурс не существует или мягко удалён
type NotFoundError struct {
	Resource string
	ID       int64
}

func NewNotFound(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Code() string { return CodeNotFound }

// PersistenceError сбой хранилища, оборачивает исходную причину
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Code() string { return CodePersistence }

// IsValidation проверяет является ли ошибка ошибкой валидации
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict проверяет является ли ошибка конфликтом расписания
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound проверяет является ли ошибка отсутствием ресурса
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
