package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallel2 executes two functions concurrently and returns both results or first error.
// The shared context is canceled as soon as either function fails.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (result1 T1, result2 T2, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fnErr error

		result1, fnErr = fn1(ctx)

		return fnErr
	})

	g.Go(func() error {
		var fnErr error

		result2, fnErr = fn2(ctx)

		return fnErr
	})

	if err = g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return result1, result2, nil
}

// PartialResult holds a result or an error for partial success patterns.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// MapPartial calls fn for every item with at most limit calls in flight and
// collects each outcome in input order. A failure does not cancel the others.
//
// Example:
//
//	days := MapPartial(ctx, 8, dates, store.ByDate)
//	for i, r := range days {
//	    if r.Err != nil {
//	        logger.Warn("skipping day", "date", dates[i])
//	    }
//	}
func MapPartial[T, R any](
	ctx context.Context,
	limit int,
	items []T,
	fn func(context.Context, T) (R, error),
) []PartialResult[R] {
	if limit < 1 {
		limit = 1
	}

	results := make([]PartialResult[R], len(items))
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup

	for i, item := range items {
		wg.Go(func() {
			sem <- struct{}{}

			defer func() { <-sem }()

			value, err := fn(ctx, item)
			results[i] = PartialResult[R]{Value: value, Err: err}
		})
	}

	wg.Wait()

	return results
}

// FanOut distributes work items across a fixed number of workers.
// The first error cancels the remaining work.
//
// Example:
//
//	err := FanOut(ctx, 4, dates, func(ctx context.Context, date string) error {
//	    return writeDay(ctx, date)
//	})
func FanOut[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	itemChan := make(chan T)

	for range workers {
		g.Go(func() error {
			for item := range itemChan {
				if err := fn(ctx, item); err != nil {
					return err
				}
			}

			return nil
		})
	}

	g.Go(func() error {
		defer close(itemChan)

		for _, item := range items {
			select {
			case itemChan <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("fan out failed: %w", err)
	}

	return nil
}
