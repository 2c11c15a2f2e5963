// Package retrylimit provides adaptive rate limiting and bounded retries
// for callers of flaky backends. The limiter speeds up while calls succeed
// and backs off when they fail; retries use exponential backoff with
// jitter and stop on fatal errors.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(20, 1, 50, 1, 0.5)
//	err := retrylimit.WithRetryConfig(ctx, func() error {
//	    return doSomeWork()
//	}, lim, retrylimit.RetryConfig{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter manages a rate limit that adjusts automatically based
// on the outcome of requests. Thread-safe.
type AdaptiveLimiter struct {
	mu       sync.RWMutex
	limiter  *rate.Limiter
	minLimit rate.Limit
	maxLimit rate.Limit
	stepUp   rate.Limit
	stepDown float64
	lastErr  time.Time
}

// NewAdaptiveLimiter creates an AdaptiveLimiter.
//
// Parameters:
//   - initial: starting requests per second
//   - min: minimum allowed rate
//   - max: maximum allowed rate
//   - stepUp: increment on success
//   - stepDown: multiplier applied on failure (e.g., 0.5 to halve)
func NewAdaptiveLimiter(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	burst := int(initial)
	if burst < 1 {
		burst = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burst),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is canceled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.limiter.Wait(ctx)
}

// Success increases the rate after a successful request.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastErr) > 10*time.Second {
		a.adjust(a.limiter.Limit() + a.stepUp)
	}
}

// Failure reduces the rate after a failed request.
func (a *AdaptiveLimiter) Failure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = time.Now()
	a.adjust(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjust(newLimit rate.Limit) {
	if newLimit > a.maxLimit {
		newLimit = a.maxLimit
	} else if newLimit < a.minLimit {
		newLimit = a.minLimit
	}
	if newLimit != a.limiter.Limit() {
		a.limiter.SetLimit(newLimit)
		burst := int(newLimit)
		if burst < 1 {
			burst = 1
		}
		a.limiter.SetBurst(burst)
	}
}

// FatalError wraps errors that should stop retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as non-retryable.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts  int                          // total attempts, including the first (min 1)
	InitialDelay time.Duration                // delay before the second attempt
	MaxDelay     time.Duration                // cap on the backoff delay
	Multiplier   float64                      // backoff growth factor
	Jitter       bool                         // add random jitter to each delay
	OnRetry      func(attempt int, err error) // optional callback before each retry
}

// DefaultRetryConfig returns a conservative configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetryConfig executes fn with bounded retries. It stops when:
//   - fn returns nil (success)
//   - fn returns a FatalError
//   - the context is cancelled or expires
//   - MaxAttempts is reached, returning the last error
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg RetryConfig) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2.0
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		lastErr = err

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}

		if lim != nil {
			lim.Failure()
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		next := delay
		if cfg.Jitter && delay > 0 {
			next = delay + time.Duration(rand.Int63n(int64(delay/4)+1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(next):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("max attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}
