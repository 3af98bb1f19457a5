package page

import (
	"context"
)

// Once iterates the result of a single fetch round. Used for queries
// that are not paginated at all, like the bearer-token user lookup.
type Once[T any] struct {
	fetch func(ctx context.Context) ([]T, error)
	done  bool
	buf   []T
}

// NewOnce creates a single-round iterator.
func NewOnce[T any](fetch func(ctx context.Context) ([]T, error)) *Once[T] {
	return &Once[T]{fetch: fetch}
}

// Next returns the next buffered record, performing the fetch on the
// first call. Returns ErrNoMoreItems once the single page is drained.
func (it *Once[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if !it.done && len(it.buf) == 0 {
		items, err := it.fetch(ctx)
		if err != nil {
			return zero, err
		}
		it.done = true
		it.buf = items
	}
	if len(it.buf) == 0 {
		return zero, ErrNoMoreItems
	}
	v := it.buf[0]
	it.buf = it.buf[1:]
	return v, nil
}
