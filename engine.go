package avretry

import (
	"context"
	"time"

	"github.com/vyrodovalexey/avretry/backoff"
	"github.com/vyrodovalexey/avretry/observability"
)

// Predicate reports whether the error from the given attempt (1-based) is
// retryable. A false result ends the session with that error before the
// backoff strategy is consulted.
type Predicate func(err error, attempt int) bool

// sleepFunc realizes the inter-attempt delay. The context adapter honors
// cancellation; the blocking adapter ignores the context entirely.
type sleepFunc func(ctx context.Context, delay time.Duration) error

// run drives one retry session. Both public variants share this loop; they
// differ only in the sleep capability and the context they supply. The
// strategy is consulted once per failed attempt and never again after it
// halts; attempts are strictly sequential.
func run[T any](
	ctx context.Context,
	strategy backoff.Strategy,
	op func(context.Context) (T, error),
	predicate Predicate,
	sleep sleepFunc,
	o *options,
) (T, error) {
	var zero T

	ctx, span := o.startSpan(ctx)

	for attempt := 1; ; attempt++ {
		o.observeAttempt()

		value, err := op(ctx)
		if err == nil {
			o.finish(span, attempt, observability.OutcomeSuccess, nil)
			return value, nil
		}

		if predicate != nil && !predicate(err, attempt) {
			o.finish(span, attempt, observability.OutcomeAborted, err)
			return zero, err
		}

		decision := strategy.Next(err)
		if decision.Halted() {
			o.finish(span, attempt, observability.OutcomeExhausted, err)
			return zero, err
		}

		o.observeRetry(span, attempt, decision.Delay(), err)

		if sleepErr := sleep(ctx, decision.Delay()); sleepErr != nil {
			o.finish(span, attempt, observability.OutcomeCancelled, sleepErr)
			return zero, sleepErr
		}
	}
}

// sleepBlocking blocks the calling goroutine for the full delay.
func sleepBlocking(_ context.Context, delay time.Duration) error {
	if delay > 0 {
		time.Sleep(delay)
	}
	return nil
}

// sleepContext waits on a timer while honoring cancellation. A zero delay
// skips the timer but still observes cancellation before the next attempt.
func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
