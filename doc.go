// Package avretry retries fallible operations under a pluggable backoff
// strategy.
//
// The blocking variant sleeps on the calling goroutine between attempts:
//
//	value, err := avretry.Retry(backoff.Constant(time.Second), fetch)
//
// The context variant suspends on a timer instead and stops at the next
// suspension point once ctx is cancelled:
//
//	strategy := backoff.NewExponential(backoff.DefaultExponentialConfig())
//	value, err := avretry.RetryContext(ctx, strategy, fetchWithContext)
//
// A strategy that never halts paired with an operation that never succeeds
// spins forever. The engine imposes no attempt ceiling of its own; cap the
// session with backoff.Limit or run RetryContext under a deadline.
package avretry
