// Package retry runs stage calls with exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/aretw0/triage/pkg/domain"
)

// Policy controls how failed calls are retried with exponential backoff.
type Policy struct {
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay" mapstructure:"initial_delay"`
	Multiplier   float64       `yaml:"multiplier" mapstructure:"multiplier"`
	MaxDelay     time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// DefaultPolicy returns 3 attempts, 500ms initial delay, 2x multiplier and
// a 5s cap.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
	}
}

// None performs a single attempt.
func None() Policy {
	return Policy{MaxAttempts: 1}
}

// Retryable reports whether err is transient: the upstream was unavailable
// or a single attempt ran out of time. Parse and validation failures are
// permanent.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrStageParse) {
		return false
	}
	return errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// ShouldRetry returns true if the error is retryable and another attempt
// is still allowed after attempt.
func (p Policy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.attempts() {
		return false
	}
	return Retryable(err)
}

// NextDelay returns the backoff delay after the given attempt (1-indexed):
// InitialDelay * Multiplier^(attempt-1), capped at MaxDelay.
func (p Policy) NextDelay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := float64(p.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Execute runs fn until it succeeds, fails permanently or runs out of
// attempts, and returns the last error. Waiting between attempts stops
// early when ctx is done.
func (p Policy) Execute(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.attempts(); attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || !p.ShouldRetry(err, attempt) {
			return err
		}

		timer := time.NewTimer(p.NextDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}
