package notify

import (
	"context"
	"errors"
	"time"

	"github.com/arskydev/dexwatch/internal/domain"
)

// RetryPolicy retries transient failures with exponential backoff:
// base_delay * 2^(attempt-1). Non-transient errors abort immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay, sleep: sleepContext}
}

func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, domain.ErrTransientDelivery) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		delay := p.BaseDelay << (attempt - 1)
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
