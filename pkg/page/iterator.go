package page

import (
	"context"
	"errors"
)

// ErrNoMoreItems signals the terminal state of a sequence. It is not a
// failure: callers ranging over an iterator stop when Next returns it.
var ErrNoMoreItems = errors.New("no more items")

// Iterator is the pull-based sequence contract shared by both
// pagination disciplines.
type Iterator[T any] interface {
	// Next returns the next record, or ErrNoMoreItems once the sequence
	// is exhausted. Any other error is a fetch failure and leaves the
	// iterator in its pre-call state.
	Next(ctx context.Context) (T, error)
}

// DefaultPageSize is the Helix page and key-batch size.
const DefaultPageSize = 100

// Collect drains an iterator into a slice. Mostly a convenience for
// callers and tests that want the whole sequence at once.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	var out []T
	for {
		v, err := it.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				return out, nil
			}
			return out, err
		}
		out = append(out, v)
	}
}
