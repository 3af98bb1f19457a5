package page

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cursorRecorder fakes a cursor-paginated endpoint backed by total
// records, serving full pages until the data runs out.
type cursorRecorder struct {
	total  int
	served int
	rounds []cursorRound
	fail   error
}

type cursorRound struct {
	first int
	after string
}

func (r *cursorRecorder) fetch(_ context.Context, first int, after string) ([]string, string, error) {
	if r.fail != nil {
		return nil, "", r.fail
	}
	r.rounds = append(r.rounds, cursorRound{first: first, after: after})

	n := first
	if remaining := r.total - r.served; n > remaining {
		n = remaining
	}
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("rec-%04d", r.served+i)
	}
	r.served += n

	cursor := ""
	if r.served < r.total {
		cursor = fmt.Sprintf("cursor-%04d", r.served)
	}
	return items, cursor, nil
}

func TestCursor_BoundedBudget(t *testing.T) {
	rec := &cursorRecorder{total: 1000}
	it := NewCursor[string](rec.fetch, 250)

	got, err := Collect[string](context.Background(), it)
	require.NoError(t, err)
	assert.Len(t, got, 250)

	require.Len(t, rec.rounds, 3)
	assert.Equal(t, 100, rec.rounds[0].first)
	assert.Equal(t, 100, rec.rounds[1].first)
	assert.Equal(t, 50, rec.rounds[2].first)

	// Cursor threads through the rounds.
	assert.Equal(t, "", rec.rounds[0].after)
	assert.Equal(t, "cursor-0100", rec.rounds[1].after)
	assert.Equal(t, "cursor-0200", rec.rounds[2].after)
}

func TestCursor_UnboundedStopsOnShortPage(t *testing.T) {
	rec := &cursorRecorder{total: 230}
	it := NewCursor[string](rec.fetch, Unlimited)

	got, err := Collect[string](context.Background(), it)
	require.NoError(t, err)
	assert.Len(t, got, 230)

	// Full pages never decrement the unbounded budget; the 30-record
	// short page ends the sequence without a further fetch.
	require.Len(t, rec.rounds, 3)
	for _, round := range rec.rounds {
		assert.Equal(t, 100, round.first, "unbounded iteration always requests full pages")
	}
}

func TestCursor_ShortPageForcesBudgetToZero(t *testing.T) {
	rec := &cursorRecorder{total: 70}
	it := NewCursor[string](rec.fetch, 500)

	got, err := Collect[string](context.Background(), it)
	require.NoError(t, err)

	assert.Len(t, got, 70)
	assert.Len(t, rec.rounds, 1, "a short page must end the sequence regardless of remaining budget")
}

func TestCursor_ZeroLimit(t *testing.T) {
	rec := &cursorRecorder{total: 100}
	it := NewCursor[string](rec.fetch, 0)

	_, err := it.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreItems)
	assert.Empty(t, rec.rounds, "a spent budget must not fetch")
}

func TestCursor_FullPagesDecrementBoundedBudget(t *testing.T) {
	rec := &cursorRecorder{total: 1000}
	it := NewCursor[string](rec.fetch, 200)

	got, err := Collect[string](context.Background(), it)
	require.NoError(t, err)
	assert.Len(t, got, 200)
	assert.Len(t, rec.rounds, 2)
}

func TestCursor_FetchErrorLeavesStateIntact(t *testing.T) {
	rec := &cursorRecorder{total: 150}
	it := NewCursor[string](rec.fetch, 150)

	ctx := context.Background()

	// Drain the first page, then fail the second.
	for i := 0; i < 100; i++ {
		_, err := it.Next(ctx)
		require.NoError(t, err)
	}

	boom := errors.New("boom")
	rec.fail = boom
	_, err := it.Next(ctx)
	require.ErrorIs(t, err, boom)

	// Retry resumes from the same cursor with the same budget.
	rec.fail = nil
	got, err := Collect[string](ctx, it)
	require.NoError(t, err)
	assert.Len(t, got, 50)

	require.Len(t, rec.rounds, 2)
	assert.Equal(t, cursorRound{first: 50, after: "cursor-0100"}, rec.rounds[1])
}
