// Package breaker guards retried operations with a circuit breaker so a
// retry loop stops hammering a dependency that keeps failing.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/avretry/observability"
)

// tripRatio is the failure ratio at which the breaker opens.
const tripRatio = 0.5

// Breaker wraps gobreaker.CircuitBreaker.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

// Option is a functional option for configuring the breaker.
type Option func(*Breaker)

// WithLogger sets the logger used for state-change events.
func WithLogger(logger observability.Logger) Option {
	return func(b *Breaker) {
		b.logger = logger
	}
}

// New creates a breaker named name that opens once at least threshold
// requests have been observed with a failure ratio of tripRatio or higher,
// and probes the dependency again after timeout.
func New(name string, threshold uint32, timeout time.Duration, opts ...Option) *Breaker {
	b := &Breaker{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= tripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Info("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
	}

	b.cb = gobreaker.NewCircuitBreaker(settings)

	return b
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Wrap adapts op so every invocation passes through the breaker. While the
// breaker is open the operation is not invoked and the call fails with
// gobreaker.ErrOpenState.
func Wrap[T any](b *Breaker, op func() (T, error)) func() (T, error) {
	return func() (T, error) {
		result, err := b.cb.Execute(func() (interface{}, error) {
			return op()
		})
		if err != nil {
			var zero T
			return zero, err
		}
		value, _ := result.(T)
		return value, nil
	}
}

// WrapContext is Wrap for context-aware operations.
func WrapContext[T any](b *Breaker, op func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		result, err := b.cb.Execute(func() (interface{}, error) {
			return op(ctx)
		})
		if err != nil {
			var zero T
			return zero, err
		}
		value, _ := result.(T)
		return value, nil
	}
}

// IsOpen reports whether err means the breaker rejected the call without
// invoking the operation. Useful as a retry predicate guard:
//
//	avretry.RetryIf(strategy, op, func(err error, _ int) bool {
//		return !breaker.IsOpen(err)
//	})
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
