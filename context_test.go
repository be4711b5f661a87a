package avretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avretry/backoff"
)

func TestRetryContextSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	value, err := RetryContext(context.Background(), backoff.Immediate(),
		func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errBoom
			}
			return 42, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 3, calls)
}

func TestRetryContextCancelDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	strategy := &recordingStrategy{inner: backoff.Constant(time.Hour)}
	calls := 0

	start := time.Now()
	_, err := RetryContext(ctx, strategy, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errBoom
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no attempt may start after cancellation")
	assert.Len(t, strategy.seen, 1, "strategy must not be consulted after cancellation")
	assert.Less(t, time.Since(start), time.Hour/2, "cancellation must abort the wait")
}

func TestRetryContextCancelledBeforeZeroDelayRetry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := RetryContext(ctx, backoff.Immediate(), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errBoom
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "a zero delay is still a cancellation point")
}

// An always-retry strategy with an always-failing operation never returns on
// its own; the session is bounded externally by a context deadline.
func TestRetryContextExternalDeadlineBoundsInfiniteLoop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := RetryContext(ctx, backoff.Constant(time.Millisecond),
		func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, calls, 1, "the engine alone never halts this session")
}

// Instrumenting entry/exit shows attempts never overlap.
func TestRetryContextAttemptsAreSequential(t *testing.T) {
	t.Parallel()

	type interval struct {
		enter time.Time
		exit  time.Time
	}

	var intervals []interval
	calls := 0

	_, err := RetryContext(context.Background(), backoff.Constant(2*time.Millisecond),
		func(context.Context) (int, error) {
			enter := time.Now()
			time.Sleep(time.Millisecond)
			exit := time.Now()
			intervals = append(intervals, interval{enter: enter, exit: exit})

			calls++
			if calls < 5 {
				return 0, errBoom
			}
			return 0, nil
		})

	require.NoError(t, err)
	require.Len(t, intervals, 5)
	for i := 1; i < len(intervals); i++ {
		assert.False(t, intervals[i].enter.Before(intervals[i-1].exit),
			"attempt %d overlaps attempt %d", i+1, i)
	}
}

func TestRetryIfContextPredicate(t *testing.T) {
	t.Parallel()

	fatal := errors.New("fatal")

	calls := 0
	_, err := RetryIfContext(context.Background(), backoff.Immediate(),
		func(context.Context) (int, error) {
			calls++
			return 0, fatal
		},
		func(err error, _ int) bool {
			return !errors.Is(err, fatal)
		})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryContextPassesContextToOperation(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	value, err := RetryContext(ctx, backoff.Immediate(), func(ctx context.Context) (string, error) {
		v, _ := ctx.Value(ctxKey{}).(string)
		return v, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "marker", value)
}
