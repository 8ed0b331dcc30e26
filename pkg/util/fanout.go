package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrTimeout is reported for a call that exceeded its per-call timeout.
var ErrTimeout = errors.New("call timed out")

// FanOut calls fn for every index in [0, n) concurrently with at most limit calls in flight.
// Every call receives its own context limited by timeout (zero means no limit).
// Results and errors are indexed by call position, never by completion order,
// and all calls are joined before return.
func FanOut[T any](ctx context.Context, limit int, timeout time.Duration, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, []error) {
	results := make([]T, n)
	errs := make([]error, n)

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			callCtx, cancel := withOptionalTimeout(ctx, timeout)
			defer cancel()

			res, err := fn(callCtx, i)
			if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, err)
			}
			results[i], errs[i] = res, err
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
