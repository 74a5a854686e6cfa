package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Policy is the immutable retry/fallback configuration for upstream calls.
// Models are tried in priority order; each model gets up to MaxAttempts
// tries with exponential backoff starting at BaseDelay, doubling per
// attempt. The policy keeps no state between calls.
type Policy struct {
	Models      []string
	MaxAttempts int
	BaseDelay   time.Duration
}

// transientMarkers are the upstream error fragments treated as retryable.
var transientMarkers = []string{
	"429",
	"500",
	"503",
	"quota",
	"rate limit",
	"ratelimit",
	"resource exhausted",
	"resource_exhausted",
	"deadline",
	"timeout",
	"timed out",
	"unavailable",
	"overloaded",
	"too many requests",
	"connection reset",
	"temporarily",
}

// isTransient classifies an upstream error as retryable. A non-transient
// error (invalid request, unknown model) aborts retries on the current
// model and advances to the next one immediately.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// callWithFallback runs call against each model in the policy until one
// succeeds. Backoff delays are interruptible via ctx; no state is written
// between attempts, so cancellation cannot corrupt anything. When every
// model is exhausted the last error is wrapped in ErrUnavailable.
func callWithFallback(ctx context.Context, p Policy, logger *zap.Logger, call func(ctx context.Context, model string) (string, error)) (string, error) {
	if len(p.Models) == 0 {
		return "", fmt.Errorf("%w: no models configured", ErrUnavailable)
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for _, model := range p.Models {
		delay := p.BaseDelay
		for attempt := 1; attempt <= attempts; attempt++ {
			result, err := call(ctx, model)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if !isTransient(err) {
				logger.Warn("model failed with non-transient error, advancing",
					zap.String("model", model), zap.Error(err))
				break
			}

			logger.Warn("model failed with transient error",
				zap.String("model", model), zap.Int("attempt", attempt), zap.Error(err))

			if attempt == attempts {
				break
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}
