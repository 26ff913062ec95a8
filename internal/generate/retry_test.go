package generate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesRetryableUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &RetryableError{StatusCode: 503, Message: "unavailable"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	wantErr := &RetryableError{StatusCode: 429, Message: "rate limited"}
	err := p.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	var r *RetryableError
	if !errors.As(err, &r) || r.StatusCode != 429 {
		t.Errorf("expected the last retryable error back, got %v", err)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	wantErr := errors.New("invalid api key")
	err := p.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected original error, got %v", err)
	}
}

func TestDo_CanceledContextStopsBetweenAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		return ErrNoItems
	})
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDo_ZeroAttemptsStillRunsOnce(t *testing.T) {
	var p Policy
	calls := 0
	if err := p.Do(context.Background(), func() error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	for attempt := 0; attempt < 6; attempt++ {
		d := p.Backoff(attempt)
		if d < p.BaseDelay {
			t.Errorf("attempt %d: backoff %v below base delay", attempt, d)
		}
		// Jitter adds at most half the capped delay on top.
		if maxD := p.MaxDelay + p.MaxDelay/2 + time.Nanosecond; d > maxD {
			t.Errorf("attempt %d: backoff %v exceeds cap %v", attempt, d, maxD)
		}
	}
}
