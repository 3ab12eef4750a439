// Package retry wraps generative API calls with bounded exponential backoff.
// Only rate-limit failures are retried; every other error is returned after
// the first call.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	goretry "github.com/sethvargo/go-retry"
)

// ErrRateLimitExhausted is returned when every attempt was rate limited.
// The last provider error is wrapped alongside it.
var ErrRateLimitExhausted = errors.New("rate limit retries exhausted")

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2000 * time.Millisecond
)

// Policy bounds the retry loop.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the first retry. Retry n waits BaseDelay*2^n.
	BaseDelay time.Duration
}

// DefaultPolicy returns 3 attempts with a 2s base delay (waits of 2s then 4s).
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// WaitHook is called before every wait with the number of calls made so far,
// the upcoming delay and the rate-limit error that triggered it.
type WaitHook func(attempt int, delay time.Duration, err error)

// Controller runs operations under a Policy.
type Controller struct {
	policy Policy
	onWait WaitHook
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithWaitHook registers a hook invoked before every wait.
func WithWaitHook(h WaitHook) Option {
	return func(c *Controller) { c.onWait = h }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a Controller. Zero or negative policy values fall back to the
// defaults.
func New(policy Policy, opts ...Option) *Controller {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultBaseDelay
	}
	c := &Controller{policy: policy}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the effective policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// WithHook returns a copy of c that calls h before every wait, in addition to
// any hook c already has.
func (c *Controller) WithHook(h WaitHook) *Controller {
	cp := *c
	prev := c.onWait
	cp.onWait = func(attempt int, delay time.Duration, err error) {
		if prev != nil {
			prev(attempt, delay, err)
		}
		h(attempt, delay, err)
	}
	return &cp
}

func newBackoff(p Policy) goretry.Backoff {
	return goretry.WithMaxRetries(uint64(p.MaxAttempts-1), goretry.NewExponential(p.BaseDelay))
}

// Do calls op until it succeeds, fails with an error that is not a rate
// limit, or MaxAttempts rate-limited calls have been made. Context
// cancellation during a wait returns the context error.
func (c *Controller) Do(ctx context.Context, op func(ctx context.Context) error) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var (
		attempts  int
		lastErr   error
		exhausted bool
	)

	inner := newBackoff(c.policy)
	backoff := goretry.BackoffFunc(func() (time.Duration, bool) {
		delay, stop := inner.Next()
		if stop {
			exhausted = true
			return 0, true
		}
		log.WarnContext(ctx, "rate limited, retrying",
			"attempt", attempts,
			"max_attempts", c.policy.MaxAttempts,
			"delay_ms", delay.Milliseconds())
		if c.onWait != nil {
			c.onWait(attempts, delay, lastErr)
		}
		return delay, false
	})

	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if generation.IsRateLimited(err) {
			lastErr = err
			return goretry.RetryableError(err)
		}
		return err
	})

	if err != nil && exhausted {
		log.ErrorContext(ctx, "rate limit retries exhausted", "attempts", attempts)
		return fmt.Errorf("%w after %d attempts: %w", ErrRateLimitExhausted, attempts, lastErr)
	}
	return err
}

// Do is the value-returning form of Controller.Do.
func Do[T any](ctx context.Context, c *Controller, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := c.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
