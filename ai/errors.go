package ai

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidRequest indicates a client-error response from the provider
	// (bad request, auth failure, unknown model). Never retried.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrRateLimited indicates the provider rejected the call for rate
	// limiting. Surfaced to the boundary as an explicit throttling signal.
	ErrRateLimited = errors.New("rate limited")

	// ErrGenerationFailed indicates the provider failed to produce a
	// completion after all retry attempts.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmbedderUnavailable indicates the embedding service could not be
	// reached. Semantic search is skipped when it sees this.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")
)

// rateLimitError carries a provider-specified retry delay.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return ErrRateLimited.Error() }

func (e *rateLimitError) Is(target error) bool { return target == ErrRateLimited }

// NewRateLimitError wraps ErrRateLimited with an explicit retry hint.
func NewRateLimitError(retryAfter time.Duration) error {
	return &rateLimitError{retryAfter: retryAfter}
}

// RetryAfter extracts a provider-specified retry delay from an error chain.
// Returns false when the error carries no hint.
func RetryAfter(err error) (time.Duration, bool) {
	var rle *rateLimitError
	if errors.As(err, &rle) && rle.retryAfter > 0 {
		return rle.retryAfter, true
	}
	return 0, false
}

// IsRetryable reports whether a generation error is worth retrying.
// Client-error classes and caller cancellation are terminal; rate limits and
// transient transport failures are retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidRequest) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
