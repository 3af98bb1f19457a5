package page

import (
	"context"
	"fmt"
)

// KeyedFetch performs one fetch round for the key-batched discipline.
// batches maps each key set name to the batch consumed this round;
// sets already exhausted are absent from the map.
type KeyedFetch[T any] func(ctx context.Context, batches map[string][]string) ([]T, error)

// Keyed iterates records fetched for an explicit set of keys. Multiple
// key sets (e.g. IDs and names) advance in lock-step: every refill
// consumes one batch from each set that still has keys and issues a
// single fetch carrying all of them.
type Keyed[T any] struct {
	sets  []*KeySet
	fetch KeyedFetch[T]
	buf   []T
}

// NewKeyed creates a key-batched iterator. At least one key set is
// required.
func NewKeyed[T any](fetch KeyedFetch[T], sets ...*KeySet) (*Keyed[T], error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("at least one key set is required")
	}
	return &Keyed[T]{sets: sets, fetch: fetch}, nil
}

// Next returns the next buffered record, refilling the buffer from the
// next batch round when it runs dry. Returns ErrNoMoreItems once every
// key set is exhausted and the buffer is empty.
func (it *Keyed[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if len(it.buf) == 0 {
		if err := it.refill(ctx); err != nil {
			return zero, err
		}
	}
	if len(it.buf) == 0 {
		return zero, ErrNoMoreItems
	}
	v := it.buf[0]
	it.buf = it.buf[1:]
	return v, nil
}

// refill consumes one batch from each active key set and issues a
// single fetch. An empty data page for a non-empty batch is not an
// error; it just contributes zero records. On fetch failure every
// cursor is rewound so the round can be retried.
func (it *Keyed[T]) refill(ctx context.Context) error {
	batches := make(map[string][]string, len(it.sets))
	marks := make([]int, len(it.sets))
	total := 0
	for i, s := range it.sets {
		marks[i] = s.mark()
		if b := s.NextBatch(0); len(b) > 0 {
			batches[s.Name()] = b
			total += len(b)
		}
	}
	if total == 0 {
		return nil
	}

	items, err := it.fetch(ctx, batches)
	if err != nil {
		for i, s := range it.sets {
			s.rewind(marks[i])
		}
		return err
	}

	it.buf = append(it.buf, items...)
	return nil
}
