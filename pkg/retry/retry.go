// Package retry wraps calls to external collaborators, the Postgres pool at
// startup and the classification model endpoints, with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Config controls the backoff schedule.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// JitterFactor spreads each delay by up to the given fraction in either
	// direction.
	JitterFactor float64
	// MaxSameErrorType escalates to a permanent failure after this many
	// consecutive errors of the same kind. Zero disables escalation.
	MaxSameErrorType int
}

// DefaultConfig suits both pool construction and model calls: three retries
// from 100ms doubling up to 5s, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       3,
		InitialDelay:     100 * time.Millisecond,
		MaxDelay:         5 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 5,
	}
}

// RetryableError lets an error declare its own retryability. Model call
// errors implement this; everything else goes through pattern matching.
type RetryableError interface {
	error
	IsRetryable() bool
}

// wait sleeps for the jittered delay or until ctx is done, and returns the
// next delay in the schedule.
func (c *Config) wait(ctx context.Context, delay time.Duration) (time.Duration, error) {
	d := delay
	if c.JitterFactor > 0 {
		d += time.Duration(float64(delay) * c.JitterFactor * (rand.Float64()*2 - 1))
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	next := time.Duration(float64(delay) * c.Multiplier)
	if next > c.MaxDelay {
		next = c.MaxDelay
	}
	return next, nil
}

// Do runs fn until it succeeds or the retry budget is spent, returning the
// last error. Context cancellation interrupts the waits between attempts.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions that also return a value, such as
// pgxpool construction.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var (
		result  T
		lastErr error
	)
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		result, lastErr = r, err

		if attempt == cfg.MaxRetries {
			break
		}
		if delay, err = cfg.wait(ctx, delay); err != nil {
			return result, err
		}
	}

	return result, lastErr
}

// DoIfRetryable runs fn like Do but gives up immediately on permanent
// errors (bad credentials, malformed SQL), and escalates when the same kind
// of transient error keeps recurring.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var (
		lastErr   error
		lastKind  string
		sameCount int
	)
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		kind := errorKind(err)
		if kind == lastKind {
			sameCount++
			if cfg.MaxSameErrorType > 0 && sameCount >= cfg.MaxSameErrorType {
				return fmt.Errorf("repeated %s error (%d times): %w", kind, sameCount, err)
			}
		} else {
			lastKind, sameCount = kind, 1
		}

		if attempt == cfg.MaxRetries {
			break
		}
		if delay, err = cfg.wait(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// Transient failure signatures seen from the Postgres driver and the model
// HTTP clients.
var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"timeout",
	"timed out",
	"temporary failure",
	"too many connections",
	"deadlock",
	"network is unreachable",
	"429",
	"500",
	"502",
	"503",
	"504",
	"rate limit",
	"too many requests",
	"service unavailable",
	"overloaded",
}

// IsRetryable reports whether an error is worth another attempt. Errors
// implementing RetryableError decide for themselves, anywhere in the wrap
// chain; everything else is matched against known transient signatures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// errorKind buckets an error for the repeated-failure escalation in
// DoIfRetryable.
func errorKind(err error) string {
	msg := strings.ToLower(err.Error())

	for _, code := range []string{"503", "502", "504", "500", "429"} {
		if strings.Contains(msg, code) {
			return code
		}
	}

	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return "connection"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return "timeout"
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return "rate_limit"
	}
	return "other"
}
