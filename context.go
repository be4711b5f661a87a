package avretry

import (
	"context"

	"github.com/vyrodovalexey/avretry/backoff"
)

// RetryContext invokes op until it succeeds, strategy halts, or ctx is
// cancelled. The inter-attempt delay is a timer wait that aborts on
// cancellation; cancellation observed there ends the session with ctx.Err()
// and neither op nor the strategy is invoked again. Cancellation during an
// attempt is the operation's own concern via the ctx it receives.
//
// Attempts are strictly sequential; op is never invoked concurrently with
// itself.
func RetryContext[T any](
	ctx context.Context,
	strategy backoff.Strategy,
	op func(context.Context) (T, error),
	opts ...Option,
) (T, error) {
	return RetryIfContext(ctx, strategy, op, nil, opts...)
}

// RetryIfContext is RetryContext with a retryability predicate, with the
// same semantics as RetryIf.
func RetryIfContext[T any](
	ctx context.Context,
	strategy backoff.Strategy,
	op func(context.Context) (T, error),
	predicate Predicate,
	opts ...Option,
) (T, error) {
	return run(ctx, strategy, op, predicate, sleepContext, newOptions(opts))
}
