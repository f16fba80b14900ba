package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func countingSleep(calls *int) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*calls++
		return ctx.Err()
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	sleeps := 0
	s := &RetryStrategy{Delay: 5 * time.Second, Sleep: countingSleep(&sleeps)}

	attempts := 0
	err := s.Do(context.Background(), "fetch", func(attempt int) error {
		if attempt != attempts {
			t.Errorf("attempt = %d, want %d", attempt, attempts)
		}
		attempts++
		if attempts < 4 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if attempts != 4 || sleeps != 3 {
		t.Errorf("attempts = %d, sleeps = %d; want 4, 3", attempts, sleeps)
	}
}

func TestDo_UnboundedByDefault(t *testing.T) {
	sleeps := 0
	s := DefaultRetryStrategy()
	s.Sleep = countingSleep(&sleeps)

	attempts := 0
	err := s.Do(context.Background(), "fetch", func(int) error {
		attempts++
		if attempts < 1000 {
			return errors.New("down")
		}
		return nil
	})
	if err != nil || attempts != 1000 {
		t.Errorf("Do = %v after %d attempts", err, attempts)
	}
}

func TestDo_MaxRetries(t *testing.T) {
	sleeps := 0
	s := &RetryStrategy{Delay: time.Millisecond, MaxRetries: 2, Sleep: countingSleep(&sleeps)}

	attempts := 0
	err := s.Do(context.Background(), "fetch", func(int) error {
		attempts++
		return errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error after max retries")
	}
	if attempts != 3 || sleeps != 2 {
		t.Errorf("attempts = %d, sleeps = %d; want 3, 2", attempts, sleeps)
	}
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &RetryStrategy{Delay: time.Hour}

	err := s.Do(ctx, "fetch", func(int) error {
		cancel()
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do error = %v, want context.Canceled", err)
	}
}

func TestIsRateLimited(t *testing.T) {
	for code, want := range map[int]bool{429: true, 403: true, 509: true, 200: false, 404: false, 500: false} {
		if got := IsRateLimited(code); got != want {
			t.Errorf("IsRateLimited(%d) = %v, want %v", code, got, want)
		}
	}
}
