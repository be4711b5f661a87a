package avretry

import (
	"context"

	"github.com/vyrodovalexey/avretry/backoff"
)

// Retry invokes op until it succeeds or strategy halts, sleeping on the
// calling goroutine between attempts.
//
// A successful attempt returns immediately; the strategy is not consulted.
// When the strategy halts, the error from the halting attempt is returned
// unchanged, with no wrapping and no attempt metadata.
func Retry[T any](strategy backoff.Strategy, op func() (T, error), opts ...Option) (T, error) {
	return RetryIf(strategy, op, nil, opts...)
}

// RetryIf is Retry with a retryability predicate. When the predicate rejects
// an error the session ends with that error at once, before the strategy is
// consulted. A nil predicate retries every error.
func RetryIf[T any](
	strategy backoff.Strategy,
	op func() (T, error),
	predicate Predicate,
	opts ...Option,
) (T, error) {
	return run(context.Background(), strategy,
		func(context.Context) (T, error) { return op() },
		predicate, sleepBlocking, newOptions(opts))
}
