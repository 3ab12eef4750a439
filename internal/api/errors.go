package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/lessondeck/internal/api/shared"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/service"
	"github.com/phrazzld/lessondeck/internal/service/auth"
	"github.com/phrazzld/lessondeck/internal/store"
)

// MapErrorToStatusCode maps internal errors to the HTTP status and envelope
// code sent to clients. Unknown errors are internal.
func MapErrorToStatusCode(err error) (int, int) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, shared.CodeUnauthorized

	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden, shared.CodeForbidden

	case errors.Is(err, service.ErrLessonPlanNotFound),
		errors.Is(err, service.ErrDeckNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound, shared.CodeNotFound

	case errors.Is(err, service.ErrBusy):
		return http.StatusTooManyRequests, shared.CodeRateLimited

	case errors.Is(err, service.ErrDeckNotReady),
		store.IsDuplicateError(err):
		return http.StatusConflict, shared.CodeValidation

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.As(err, &verr),
		errors.Is(err, domain.ErrSlideIndexOutOfRange),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest, shared.CodeValidation

	default:
		return http.StatusInternalServerError, shared.CodeInternal
	}
}

// GetSafeErrorMessage returns a user-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this deck"

	case errors.Is(err, service.ErrLessonPlanNotFound),
		errors.Is(err, store.ErrLessonPlanNotFound):
		return "Lesson plan not found"
	case errors.Is(err, service.ErrDeckNotFound),
		errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, service.ErrBusy):
		return "Too many decks are being generated, try again later"
	case errors.Is(err, service.ErrDeckNotReady):
		return "Deck is still generating"

	case errors.Is(err, domain.ErrSlideIndexOutOfRange):
		return fmt.Sprintf("Slide index must be between 0 and %d", domain.SlideCount-1)
	case errors.As(err, &verr):
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	case errors.Is(err, domain.ErrInvalidGrade):
		return "Invalid grade: must be between 0 and 12"
	case errors.Is(err, domain.ErrEmptyLessonTitle):
		return "Invalid lesson: required field"
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to an error envelope and logs it. A non-empty
// message replaces the mapped one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status, code := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, code, message, err)
}

// SanitizeValidationError turns validator output into a message naming the
// offending field without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag())))
	}
	return strings.Join(msgs, "; ")
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
