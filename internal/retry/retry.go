// Package retry runs a single outbound call with bounded exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"checkout-service/internal/domain"
)

const (
	DefaultAttempts = 3
	DefaultBase     = 300 * time.Millisecond
)

type Executor struct {
	attempts  int
	base      time.Duration
	retryable func(error) bool
	logger    *zap.Logger
	onRetry   func(op string, attempt int)
	wait      func(ctx context.Context, d time.Duration) error
}

type Option func(*Executor)

func WithAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.attempts = n
		}
	}
}

func WithBase(d time.Duration) Option {
	return func(e *Executor) { e.base = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithOnRetry registers a hook called before every retry with the operation
// name and the number of the attempt about to run.
func WithOnRetry(fn func(op string, attempt int)) Option {
	return func(e *Executor) { e.onRetry = fn }
}

// WithWait replaces the backoff sleep; used by tests.
func WithWait(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.wait = fn }
}

// New builds an executor that retries only errors accepted by retryable.
func New(retryable func(error) bool, opts ...Option) *Executor {
	e := &Executor{
		attempts:  DefaultAttempts,
		base:      DefaultBase,
		retryable: retryable,
		logger:    zap.NewNop(),
		wait:      sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Delay returns the backoff before retry n (n >= 1): base * 2^(n-1).
func (e *Executor) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return e.base * time.Duration(1<<(n-1))
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts are exhausted. Exhaustion is reported as domain.ErrUpstreamFailure.
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if attempt > 1 {
			if e.onRetry != nil {
				e.onRetry(op, attempt)
			}
			e.logger.Warn("retrying provider request",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", e.attempts),
				zap.Error(lastErr))
			if err := e.wait(ctx, e.Delay(attempt-1)); err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamFailure, op, err)
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !e.retryable(err) {
			return err
		}
		lastErr = err
	}

	e.logger.Error("provider request failed", zap.String("op", op), zap.Int("attempts", e.attempts), zap.Error(lastErr))
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamFailure, op, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
