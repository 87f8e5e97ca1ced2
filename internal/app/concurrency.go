package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ForEachLimit calls fn for every item with at most limit calls in flight and
// returns one error slot per item. A failure never cancels its siblings.
// Items not yet started when ctx ends are skipped with ctx.Err(), and a panic
// in fn becomes that item's error. A non-positive limit runs everything at once.
//
// Example:
//
//	errs := ForEachLimit(ctx, 4, quotes, func(ctx context.Context, q domain.Quote) error {
//	    return source.PostRecord(ctx, toRecord(q))
//	})
func ForEachLimit[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) error) []error {
	errs := make([]error, len(items))
	if len(items) == 0 {
		return errs
	}

	if limit <= 0 {
		limit = len(items)
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}

			errs[i] = callGuarded(ctx, item, fn)

			return nil
		})
	}

	_ = g.Wait() // slots carry the errors

	return errs
}

func callGuarded[T any](ctx context.Context, item T, fn func(context.Context, T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn(ctx, item)
}
