package services

import (
	"context"
	"time"
)

// RetryPolicy is an exponential backoff schedule for transient failures
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Factor     float64
	MaxDelay   time.Duration
}

// DefaultRetryPolicy returns 3 retries starting at 200ms, doubling, capped at 2s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
		Factor:     2,
		MaxDelay:   2 * time.Second,
	}
}

// Delay returns the wait before retry number retry (0 for the first retry)
func (p RetryPolicy) Delay(retry int) time.Duration {
	delay := float64(p.BaseDelay)
	for i := 0; i < retry; i++ {
		delay *= p.Factor
		if delay >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if time.Duration(delay) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
