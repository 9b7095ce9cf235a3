package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs a and b at the same time and returns both results. When
// either fails the other sees a canceled context and only the first error is
// returned, with zero results.
func Parallel2[A, B any](
	ctx context.Context,
	a func(context.Context) (A, error),
	b func(context.Context) (B, error),
) (A, B, error) {
	var (
		ra A
		rb B
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ra, err = a(gctx)
		return err
	})
	g.Go(func() (err error) {
		rb, err = b(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var (
			za A
			zb B
		)

		return za, zb, err
	}

	return ra, rb, nil
}

// FanOut hands items to a pool of workers. The first error stops the feed;
// items not yet handed out are skipped.
func FanOut[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	feed := make(chan T)

	g.Go(func() error {
		defer close(feed)

		for _, item := range items {
			select {
			case feed <- item:
			case <-gctx.Done():
				return nil
			}
		}

		return nil
	})

	for range max(workers, 1) {
		g.Go(func() error {
			for item := range feed {
				if err := fn(gctx, item); err != nil {
					return err
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("fan out: %w", err)
	}

	return ctx.Err()
}
