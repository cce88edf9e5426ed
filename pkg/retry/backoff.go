package retry

import (
	"context"
	"errors"
	"time"
)

// Backoff computes the delay before the next retry attempt.
type Backoff interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff grows delays by powers of two, capped at Max.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// Next returns the delay after the given attempt (1-based).
func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := b.Base
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if attempt > 32 {
		attempt = 32
	}
	delay := base << (attempt - 1)
	if delay <= 0 || (b.Max > 0 && delay > b.Max) {
		if b.Max > 0 {
			return b.Max
		}
		return base
	}
	return delay
}

// DefaultBackoff returns the default exponential retry policy.
func DefaultBackoff() Backoff {
	return ExponentialBackoff{
		Base: 100 * time.Millisecond,
		Max:  5 * time.Second,
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Policy bounds how often Do calls its function.
type Policy struct {
	Attempts int
	Backoff  Backoff
	Sleep    SleepFunc
	// OnError observes each failed attempt.
	OnError func(attempt int, err error)
}

// Do calls fn until it succeeds, attempts run out or ctx is done.
// It returns the last error from fn, joined with the context error when
// the wait was cut short.
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = DefaultBackoff()
	}
	if p.Sleep == nil {
		p.Sleep = Sleep
	}
	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if p.OnError != nil {
			p.OnError(attempt, err)
		}
		if attempt == p.Attempts {
			break
		}
		if err := p.Sleep(ctx, p.Backoff.Next(attempt)); err != nil {
			return errors.Join(lastErr, err)
		}
	}
	return lastErr
}
