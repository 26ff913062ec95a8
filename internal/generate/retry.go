package generate

import (
	"context"
	"math/rand"
	"time"
)

// Policy is a data-driven retry policy: how many attempts an operation
// gets and how backoff grows between them. The zero value is unusable;
// start from DefaultPolicy.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy matches the service's rate-limit characteristics: two
// attempts with a short exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Backoff returns the delay before retrying after attempt n (0-indexed),
// doubling each attempt with jitter, capped at MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	return d + jitter
}

// Do runs op, retrying retryable failures up to MaxAttempts total
// attempts with backoff in between. Non-retryable errors and context
// cancellation stop immediately.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(p.Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
