// Package backoff provides pluggable backoff strategies for retry loops.
package backoff

import (
	"math"
	"time"
)

// Decision is the outcome of consulting a Strategy after a failed attempt:
// retry after a delay, or halt permanently.
type Decision struct {
	delay time.Duration
	halt  bool
}

// RetryAfter returns a Decision instructing the engine to wait d before the
// next attempt. A zero duration retries immediately.
func RetryAfter(d time.Duration) Decision {
	return Decision{delay: d}
}

// Halt returns a Decision instructing the engine to stop retrying.
func Halt() Decision {
	return Decision{halt: true}
}

// Halted reports whether the decision is to stop retrying.
func (d Decision) Halted() bool {
	return d.halt
}

// Delay returns the wait before the next attempt. Meaningful only when
// Halted reports false.
func (d Decision) Delay() time.Duration {
	return d.delay
}

// Strategy decides, after each failed attempt, whether the operation should
// be retried and how long to wait first.
//
// Next is called exactly once per failed attempt, in attempt order. It is
// never called again after it first returns a halt decision, and never after
// a successful attempt. Implementations may mutate their own internal state
// but must not perform I/O. A Strategy instance belongs to a single retry
// session and must not be shared across concurrent sessions.
type Strategy interface {
	Next(err error) Decision
}

// Immediate returns a strategy that always retries with no delay. Paired
// with an operation that never succeeds it spins forever; bound it with
// Limit or cancel the surrounding context.
func Immediate() Strategy {
	return constant(0)
}

// Constant returns a strategy that always retries after a fixed delay.
func Constant(d time.Duration) Strategy {
	return constant(d)
}

type constant time.Duration

func (c constant) Next(error) Decision {
	return RetryAfter(time.Duration(c))
}

// ExponentialConfig contains exponential backoff configuration.
type ExponentialConfig struct {
	// Base is the delay before the first retry.
	Base time.Duration
	// Max caps the computed delay.
	Max time.Duration
	// Multiplier is the growth factor between consecutive delays.
	Multiplier float64
	// MaxAttempts caps the total number of operation invocations.
	// Zero means unlimited.
	MaxAttempts int
}

// DefaultExponentialConfig returns default exponential backoff configuration.
func DefaultExponentialConfig() ExponentialConfig {
	return ExponentialConfig{
		Base:       100 * time.Millisecond,
		Max:        10 * time.Second,
		Multiplier: 2,
	}
}

// NewExponential creates an exponential backoff strategy. Zero-valued
// config fields fall back to DefaultExponentialConfig; MaxAttempts keeps
// its zero value, meaning no attempt cap.
func NewExponential(cfg ExponentialConfig) Strategy {
	defaults := DefaultExponentialConfig()
	if cfg.Base <= 0 {
		cfg.Base = defaults.Base
	}
	if cfg.Max <= 0 {
		cfg.Max = defaults.Max
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = defaults.Multiplier
	}
	return &exponential{cfg: cfg}
}

// exponential yields base * multiplier^n capped at max, where n counts
// prior consultations.
type exponential struct {
	cfg     ExponentialConfig
	attempt int
}

func (e *exponential) Next(error) Decision {
	e.attempt++
	if e.cfg.MaxAttempts > 0 && e.attempt >= e.cfg.MaxAttempts {
		return Halt()
	}

	delay := float64(e.cfg.Base) * math.Pow(e.cfg.Multiplier, float64(e.attempt-1))
	if delay > float64(e.cfg.Max) {
		delay = float64(e.cfg.Max)
	}

	return RetryAfter(time.Duration(delay))
}

// Limit wraps inner so that the total number of operation invocations never
// exceeds maxAttempts: the maxAttempts-th consultation halts regardless of
// what inner would decide. A maxAttempts of zero or less halts on the first
// consultation, so the operation runs exactly once.
func Limit(maxAttempts int, inner Strategy) Strategy {
	return &limited{max: maxAttempts, inner: inner}
}

type limited struct {
	max   int
	calls int
	inner Strategy
}

func (l *limited) Next(err error) Decision {
	l.calls++
	if l.calls >= l.max {
		return Halt()
	}
	return l.inner.Next(err)
}
