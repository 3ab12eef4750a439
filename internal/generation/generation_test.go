package generation_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRateLimited(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &generation.StatusError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, true},
		{"wrapped status 429", fmt.Errorf("content: %w", &generation.StatusError{Code: 429}), true},
		{"status 500", &generation.StatusError{Code: 500, Message: "internal"}, false},
		{"sentinel", fmt.Errorf("x: %w", generation.ErrRateLimited), true},
		{"code in message", errors.New("googleapi: Error 429: quota exceeded"), true},
		{"http status line", errors.New("unexpected response: HTTP/1.1 429 Too Many Requests"), true},
		{"status code field", errors.New("request failed, status code: 429"), true},
		{"status in message", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"digits inside a number", errors.New("invalid argument: prompt has 14290 tokens"), false},
		{"bare count", errors.New("input too long: 429 tokens over limit"), false},
		{"other", errors.New("connection reset"), false},
		{"blocked", generation.ErrContentBlocked, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, generation.IsRateLimited(tt.err))
		})
	}
}

func TestStatusErrorIs(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("wrapped: %w", &generation.StatusError{Code: 429})
	assert.ErrorIs(t, err, generation.ErrRateLimited)
	assert.NotErrorIs(t, &generation.StatusError{Code: 503}, generation.ErrRateLimited)
}

func TestDataURIRoundTrip(t *testing.T) {
	t.Parallel()
	img := generation.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}

	uri := img.DataURI()
	assert.Equal(t, "data:image/jpeg;base64,/9j/", uri)

	back, ok := generation.DecodeDataURI(uri)
	require.True(t, ok)
	assert.Equal(t, img, back)

	_, ok = generation.DecodeDataURI("error")
	assert.False(t, ok)
	assert.Contains(t, generation.Image{Data: []byte("x")}.DataURI(), "data:image/png;base64,")
}
