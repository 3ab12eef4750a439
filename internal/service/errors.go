package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lessondeck/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps them to envelope codes and HTTP statuses.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidInput indicates the request data failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLessonPlanNotFound indicates that the lesson plan does not exist.
	ErrLessonPlanNotFound = errors.New("lesson plan not found")

	// ErrDeckNotFound indicates that the deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrDeckNotReady indicates an export was requested while the deck is still generating.
	ErrDeckNotReady = errors.New("deck is still generating")

	// ErrBusy indicates the generation queue cannot take more work right now.
	ErrBusy = errors.New("too many generations in progress")
)

// ServiceError wraps errors from a service operation with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_deck", "list_lesson_plans")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err for operation. Store not-found errors are
// translated to the service sentinels and returned without wrapping, as are
// the service sentinels themselves.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrLessonPlanNotFound):
		return ErrLessonPlanNotFound
	case errors.Is(err, store.ErrDeckNotFound):
		return ErrDeckNotFound
	}

	for _, sentinel := range []error{
		ErrNotOwned, ErrInvalidInput, ErrLessonPlanNotFound,
		ErrDeckNotFound, ErrDeckNotReady, ErrBusy,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
