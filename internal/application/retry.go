package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
)

// RetryConfig bounds the retry loop around refund calls. Refunds are the only
// operation retried blindly: every adapter carries a provider-side idempotency
// key, so a repeated attempt cannot double-refund.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	return c
}

func retry[T any](ctx context.Context, cfg RetryConfig, operation func(ctx context.Context) (*T, error)) (*T, error) {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(cfg.BaseDelay, attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	if apiErr, ok := provider.IsAPIError(err); ok {
		return apiErr.IsRetryable()
	}
	if _, ok := provider.IsNetworkError(err); ok {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// backoff doubles the base delay per attempt and adds up to 25% jitter.
func backoff(base time.Duration, attempt int) time.Duration {
	delay := base << attempt
	jitter := time.Duration(rand.Int63n(int64(delay) / 4))
	return delay + jitter
}
