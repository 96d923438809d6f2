// Package oracle talks to the external text-generation service used as the
// extraction and adjudication engine. Concrete providers perform a single
// attempt; WithRetry wraps any client with the per-call timeout and
// exponential backoff policy.
package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/lorehaven/loregraph/internal/fault"
)

// Options tune a single completion call.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Client issues one prompt/response exchange. Implementations must return a
// *fault.Error for every failure so callers can branch on recoverability.
type Client interface {
	Complete(ctx context.Context, prompt, system string, opts Options) (string, error)
}

// transient HTTP statuses, per the retry policy: request timeout, rate
// limiting, and the whole 5xx family.
func transientStatus(status int) bool {
	return status == 408 || status == 429 || status >= 500
}

// classifyStatus maps a non-success HTTP status to a typed error.
func classifyStatus(status int, err error) *fault.Error {
	if transientStatus(status) {
		return fault.Transient(fault.OracleAPIError, err, "oracle request failed with status %d", status)
	}
	return fault.Wrap(fault.OracleAPIError, err, "oracle request failed with status %d", status)
}

// classifyTransport maps transport-level failures. Per-attempt deadline
// expiry counts as a request timeout and is retryable; everything else is
// not.
func classifyTransport(err error) *fault.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Transient(fault.OracleAPIError, err, "oracle request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return fault.Wrap(fault.OracleAPIError, err, "oracle request canceled")
	}
	return fault.Wrap(fault.OracleAPIError, err, "oracle request failed: %v", err)
}

// errKeyMissing builds the fail-fast credential error.
func errKeyMissing(provider string) *fault.Error {
	return fault.New(fault.OracleKeyMissing, "no API key configured for %s provider", strings.ToLower(provider))
}
