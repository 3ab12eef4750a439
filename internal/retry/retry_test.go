package retry_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errQuota = &generation.StatusError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

type waitRecorder struct {
	delays   []time.Duration
	attempts []int
}

func (r *waitRecorder) hook(attempt int, delay time.Duration, _ error) {
	r.attempts = append(r.attempts, attempt)
	r.delays = append(r.delays, delay)
}

func TestRetriesRateLimitThenSucceeds(t *testing.T) {
	t.Parallel()
	rec := &waitRecorder{}
	c := retry.New(fastPolicy(), retry.WithWaitHook(rec.hook))

	calls := 0
	got, err := retry.Do(context.Background(), c, func(context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", errQuota
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, rec.delays,
		"delays double from the base")
	assert.Equal(t, []int{1, 2}, rec.attempts)
}

func TestExhaustionStopsAtMaxAttempts(t *testing.T) {
	t.Parallel()
	rec := &waitRecorder{}
	c := retry.New(fastPolicy(), retry.WithWaitHook(rec.hook))

	calls := 0
	err := c.Do(context.Background(), func(context.Context) error {
		calls++
		return errQuota
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrRateLimitExhausted)
	assert.ErrorIs(t, err, generation.ErrRateLimited, "the last provider error stays in the chain")
	assert.Equal(t, 3, calls, "no fourth call")
	assert.Len(t, rec.delays, 2)
}

func TestOtherErrorsAreNotRetried(t *testing.T) {
	t.Parallel()
	rec := &waitRecorder{}
	c := retry.New(fastPolicy(), retry.WithWaitHook(rec.hook))
	boom := &generation.StatusError{Code: 500, Message: "internal"}

	calls := 0
	err := c.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, retry.ErrRateLimitExhausted)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestContextCancelledDuringWait(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := retry.New(retry.Policy{MaxAttempts: 3, BaseDelay: time.Hour},
		retry.WithWaitHook(func(int, time.Duration, error) { cancel() }))

	calls := 0
	err := c.Do(ctx, func(context.Context) error {
		calls++
		return errQuota
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithHookChainsHooks(t *testing.T) {
	t.Parallel()
	first, second := &waitRecorder{}, &waitRecorder{}
	base := retry.New(retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}, retry.WithWaitHook(first.hook))
	c := base.WithHook(second.hook)

	_ = c.Do(context.Background(), func(context.Context) error { return errQuota })

	assert.Len(t, first.delays, 1)
	assert.Len(t, second.delays, 1)
	assert.Equal(t, base.Policy(), c.Policy())
}
