package oracle

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lorehaven/loregraph/internal/fault"
)

// Retry runs fn up to maxAttempts times, sleeping baseDelay×2^attempt
// between attempts. Only errors classified recoverable are retried;
// non-recoverable errors and context cancellation short-circuit. The last
// error is returned once attempts are exhausted, and no sleep follows the
// final attempt.
func Retry[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = baseDelay * 32
	b.MaxElapsedTime = 0

	operation := func() (T, error) {
		v, err := fn()
		if err != nil && !fault.IsRecoverable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxAttempts-1)), ctx)
	return backoff.RetryWithData(operation, policy)
}

// retrier decorates a Client with the per-attempt timeout and the backoff
// policy. ORACLE_KEY_MISSING and other non-recoverable failures pass
// through on the first attempt.
type retrier struct {
	inner       Client
	maxAttempts int
	baseDelay   time.Duration
	timeout     time.Duration
}

// WithRetry wraps client so each Complete call performs up to maxAttempts
// attempts, each bounded by timeout.
func WithRetry(client Client, maxAttempts int, baseDelay, timeout time.Duration) Client {
	return &retrier{
		inner:       client,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		timeout:     timeout,
	}
}

func (r *retrier) Complete(ctx context.Context, prompt, system string, opts Options) (string, error) {
	return Retry(ctx, r.maxAttempts, r.baseDelay, func() (string, error) {
		attemptCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		out, err := r.inner.Complete(attemptCtx, prompt, system, opts)
		if err != nil && ctx.Err() != nil {
			// The run itself was canceled; never retry past that.
			return "", fault.Wrap(fault.OracleAPIError, ctx.Err(), "oracle request canceled")
		}
		return out, err
	})
}
