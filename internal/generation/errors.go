package generation

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// statusCode429 matches 429 only where it reads as a status code: after
// "error", "status", "code" or "HTTP", or before "Too Many Requests".
var statusCode429 = regexp.MustCompile(
	`(?i)\b(?:error|status(?:\s+code)?|code|http(?:/[\d.]+)?)\s*[:=]?\s*429\b|\b429\s+too\s+many\s+requests`,
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when a request fails for any general reason
	ErrGenerationFailed = errors.New("generation request failed")

	// ErrInvalidResponse is returned when the response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrNoImage is returned when an image response carries no inline image part
	ErrNoImage = errors.New("response contains no image")

	// ErrRateLimited is returned when the provider rejects a request for quota reasons
	ErrRateLimited = errors.New("rate limited by language model provider")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// StatusError is a provider failure with its numeric status code.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("generation error %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("generation error %d: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrRateLimited) match a 429 StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == http.StatusTooManyRequests
}

// IsRateLimited reports whether err signals an exceeded request quota: a 429
// status anywhere in the chain, or the code / RESOURCE_EXHAUSTED status
// embedded in the message of an error the provider did not type.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests
	}

	msg := err.Error()
	return statusCode429.MatchString(msg) || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
