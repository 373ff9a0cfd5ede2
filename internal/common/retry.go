package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/punchlist/internal/service"
)

var (
	// ErrRateLimit marks a remote quota rejection; the next attempt waits the
	// full MaxDelay.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is returned once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError lets an operation say whether trying again can help.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// DefaultRetryOptions is applied field by field wherever a caller leaves a
// value unset.
var DefaultRetryOptions = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     30 * time.Second,
	Multiplier:   2.0,
}

func withRetryDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultRetryOptions.MaxAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultRetryOptions.InitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultRetryOptions.MaxDelay
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = DefaultRetryOptions.Multiplier
	}
	return opts
}

// WithRetry runs operation until it succeeds, returns a non-retryable error,
// runs out of attempts or ctx is done. Report exports use it; the ingestion
// pipeline never retries.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = withRetryDefaults(opts)
	logger := FromContext(ctx)
	delay := opts.InitialDelay

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		var retryable *RetryableError
		if errors.As(lastErr, &retryable) && !retryable.Retryable {
			return lastErr
		}
		if attempt >= opts.MaxAttempts {
			break
		}

		wait := delay
		if errors.Is(lastErr, ErrRateLimit) {
			wait = opts.MaxDelay
		}
		logger.Warn("Retrying after failure",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"wait", wait,
			"error", lastErr)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*opts.Multiplier), opts.MaxDelay)
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, opts.MaxAttempts, lastErr)
}
