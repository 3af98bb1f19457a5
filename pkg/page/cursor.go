package page

import (
	"context"
)

// Unlimited requests the whole sequence: the budget is never
// decremented and iteration only stops when the server returns a
// short page.
const Unlimited = -1

// CursorFetch performs one fetch round for the cursor discipline. It
// requests up to first items after the given opaque cursor and returns
// the page, the next cursor ("" when the response carried none), and
// any error.
type CursorFetch[T any] func(ctx context.Context, first int, after string) ([]T, string, error)

// Cursor iterates a broad listing query behind an opaque continuation
// cursor, bounded by a remaining-item budget.
type Cursor[T any] struct {
	fetch     CursorFetch[T]
	unbounded bool
	remaining int
	cursor    string
	buf       []T
}

// NewCursor creates a cursor-paginated iterator retrieving at most
// limit records. Pass Unlimited (or any negative limit) to iterate
// until the server runs out of data.
func NewCursor[T any](fetch CursorFetch[T], limit int) *Cursor[T] {
	return &Cursor[T]{
		fetch:     fetch,
		unbounded: limit < 0,
		remaining: limit,
	}
}

// retrieve computes the page size for the next fetch round:
// min(remaining, DefaultPageSize), or a full page when unbounded.
func (it *Cursor[T]) retrieve() int {
	if it.unbounded || it.remaining > DefaultPageSize {
		return DefaultPageSize
	}
	return it.remaining
}

// Next returns the next buffered record, fetching the next page when
// the buffer runs dry. Returns ErrNoMoreItems once the budget is spent
// or the server signalled the end with a short page.
func (it *Cursor[T]) Next(ctx context.Context) (T, error) {
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

// refill fetches one page. A page shorter than DefaultPageSize means
// the server has no more data, so the budget is forced to zero
// regardless of the caller's original limit. The stored cursor only
// changes when the response carried one; state stays untouched when
// the fetch fails.
func (it *Cursor[T]) refill(ctx context.Context) error {
	n := it.retrieve()
	if n <= 0 {
		return nil
	}

	items, cursor, err := it.fetch(ctx, n, it.cursor)
	if err != nil {
		return err
	}

	if len(items) < DefaultPageSize {
		it.unbounded = false
		it.remaining = 0
	} else if !it.unbounded {
		it.remaining -= len(items)
	}
	if cursor != "" {
		it.cursor = cursor
	}

	it.buf = append(it.buf, items...)
	return nil
}
