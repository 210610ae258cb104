// Package fanout runs one task per item concurrently and joins them.
//
// Every task reports an Outcome. OK and Degraded outcomes keep their value in
// the batch; a Fatal outcome cancels the remaining tasks and fails the batch.
// Values are returned in the order of the input items.
package fanout

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

type Outcome[R any] struct {
	Value  R
	Status Status
	Err    error
}

func OK[R any](v R) Outcome[R] {
	return Outcome[R]{Value: v, Status: StatusOK}
}

// Degraded keeps v in the batch and records err.
func Degraded[R any](v R, err error) Outcome[R] {
	return Outcome[R]{Value: v, Status: StatusDegraded, Err: err}
}

func Fatal[R any](err error) Outcome[R] {
	return Outcome[R]{Status: StatusFatal, Err: err}
}

type Batch[R any] struct {
	Values   []R
	Degraded []error
}

var ErrFatalWithoutCause = errors.New("fanout: fatal outcome without error")

// Map runs fn for each item and waits for all of them.
func Map[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) Outcome[R]) (Batch[R], error) {
	if len(items) == 0 {
		return Batch[R]{Values: []R{}}, nil
	}

	outcomes := make([]Outcome[R], len(items))

	g, ctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			out := fn(ctx, item)
			outcomes[i] = out

			if out.Status == StatusFatal {
				if out.Err == nil {
					return ErrFatalWithoutCause
				}
				return out.Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Batch[R]{}, err
	}

	batch := Batch[R]{Values: make([]R, 0, len(items))}
	for _, out := range outcomes {
		batch.Values = append(batch.Values, out.Value)
		if out.Status == StatusDegraded && out.Err != nil {
			batch.Degraded = append(batch.Degraded, out.Err)
		}
	}

	return batch, nil
}

// All resolves every item with fn; any error fails the whole call.
func All[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	batch, err := Map(ctx, items, func(ctx context.Context, item T) Outcome[R] {
		v, err := fn(ctx, item)
		if err != nil {
			return Fatal[R](err)
		}
		return OK(v)
	})
	if err != nil {
		return nil, err
	}

	return batch.Values, nil
}
