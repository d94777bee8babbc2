package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy retries an operation up to a bounded number of attempts.
// Attempts run back-to-back unless Delay is set.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	logger      *zap.Logger
}

// NewRetryPolicy creates a retry policy
func NewRetryPolicy(maxAttempts int, delay time.Duration, logger *zap.Logger) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		logger:      logger,
	}
}

// Do invokes op up to MaxAttempts times, returning the first successful
// result immediately. Each failed attempt is logged with its index. After
// the final attempt fails, the last error is returned.
func (p *RetryPolicy) Do(ctx context.Context, label string, op func() (string, error)) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 && p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		result, err := op()
		if err == nil {
			return result, nil
		}

		lastErr = err
		p.logger.Warn("attempt failed",
			zap.String("operation", label),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Error(err))
	}

	return "", lastErr
}
