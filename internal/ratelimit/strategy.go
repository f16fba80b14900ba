package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// RetryStrategy is a fixed-delay retry policy. MaxRetries of zero means
// retry forever.
type RetryStrategy struct {
	Delay      time.Duration
	MaxRetries int

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryStrategy returns the capture loop policy: 5s between attempts, unbounded
func DefaultRetryStrategy() *RetryStrategy {
	return &RetryStrategy{
		Delay:      5 * time.Second,
		MaxRetries: 0,
	}
}

// Do runs op until it succeeds. Every failure is logged and followed by the
// fixed delay. It only returns an error when ctx is cancelled or MaxRetries
// is exhausted.
func (s *RetryStrategy) Do(ctx context.Context, name string, op func(attempt int) error) error {
	for attempt := 0; ; attempt++ {
		err := op(attempt)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.MaxRetries > 0 && attempt+1 > s.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", name, s.MaxRetries, err)
		}

		log.Printf("[Retry] %s: %v. Retrying whole batch in %s...", name, err, s.Delay)
		if err := s.wait(ctx); err != nil {
			return err
		}
	}
}

func (s *RetryStrategy) wait(ctx context.Context) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, s.Delay)
	}
	return SleepContext(ctx, s.Delay)
}

// SleepContext blocks for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRateLimited reports whether a status code signals server-side throttling
func IsRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || // 429
		statusCode == http.StatusForbidden || // Some tile servers use 403 for rate limits
		statusCode == 509 // Bandwidth Limit Exceeded
}
