package ocr

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"go.uber.org/zap"
)

// retryPolicy controls retries of OCR API calls with exponential backoff
// and jitter.
type retryPolicy struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
	jitterFraction float64
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts:    3,
		initialBackoff: time.Second,
		maxBackoff:     30 * time.Second,
		multiplier:     2.0,
		jitterFraction: 0.25,
	}
}

// apiStatusError marks an HTTP failure from the OCR provider. Retryable
// reports whether the status indicates a transient server-side issue.
type apiStatusError struct {
	status int
	body   string
}

func (e *apiStatusError) Error() string {
	return e.body
}

func (e *apiStatusError) Retryable() bool {
	switch e.status {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// retryable reports whether an OCR call failure is worth retrying. Network
// timeouts and transient HTTP statuses qualify; everything else fails fast.
func retryable(err error) bool {
	var se *apiStatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// withRetry runs fn up to policy.maxAttempts times, sleeping with jittered
// exponential backoff between attempts. Context cancellation stops retries
// immediately.
func withRetry[T any](ctx context.Context, policy retryPolicy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < policy.maxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt >= policy.maxAttempts-1 {
			break
		}

		zap.L().Warn("retrying OCR call",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(policy.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := float64(p.initialBackoff) * math.Pow(p.multiplier, float64(attempt))
	if delay > float64(p.maxBackoff) {
		delay = float64(p.maxBackoff)
	}
	if p.jitterFraction > 0 {
		delay += (rand.Float64()*2 - 1) * delay * p.jitterFraction
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
