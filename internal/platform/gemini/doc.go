// Package gemini implements generation.TextGenerator and generation.ImageGenerator
// on top of Google's Gemini API (google.golang.org/genai).
//
// This package is an infrastructure adapter: it builds requests, walks the
// candidate -> content -> parts structure of responses, and translates SDK
// errors into generation errors. Provider status codes survive as
// generation.StatusError so the retry controller can recognise rate limiting.
// It performs no retries itself.
package gemini
