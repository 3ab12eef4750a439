package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/lessondeck/internal/generation"
	"google.golang.org/genai"
)

// ErrEmptyPrompt is returned when a request is made with an empty prompt.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// mapError translates SDK errors into generation errors. Context errors are
// returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &generation.StatusError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &generation.StatusError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}

	return fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
}
