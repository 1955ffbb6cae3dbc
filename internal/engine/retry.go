package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// withRetry calls fn until it succeeds, fails with a non-retryable error or
// runs out of attempts. The wait doubles after each failure and is cut short
// by ctx.
func withRetry[T any](ctx context.Context, attempts int, backoff time.Duration, logger *zap.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	wait := backoff
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !types.IsRetryable(err) || attempt == attempts {
			break
		}
		logger.Warn("retrying after upstream failure",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, &types.UpstreamFetchError{Source: op, Message: "retry aborted", Cause: ctx.Err()}
		case <-timer.C:
		}
		wait *= 2
	}
	return zero, lastErr
}
