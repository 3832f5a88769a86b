package llm

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy retries transient provider failures with exponential backoff.
// Malformed payloads and caller mistakes are never retried; those failures
// repeat deterministically.
type RetryPolicy struct {
	MaxRetries uint64        // retries after the first attempt
	Backoff    time.Duration // base for the exponential schedule
}

// Do runs op, retrying transient errors up to MaxRetries times.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, op func(ctx context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	base := p.Backoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(p.MaxRetries, retry.WithJitter(50*time.Millisecond, retry.NewExponential(base)))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if isRetryableError(err) {
			logger.Warn("llm.retry", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// A deadline here is the per-attempt timeout; the caller's context is
	// checked separately by retry.Do.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var retryableErr interface{ Retryable() bool }
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable()
	}
	return false
}
