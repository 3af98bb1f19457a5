package page

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyedRecorder fakes the dispatcher side of a keyed fetch, recording
// every round and echoing one record per requested key.
type keyedRecorder struct {
	rounds []map[string][]string
	fail   error
}

func (r *keyedRecorder) fetch(_ context.Context, batches map[string][]string) ([]string, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	copied := make(map[string][]string, len(batches))
	var out []string
	for name, keys := range batches {
		copied[name] = append([]string(nil), keys...)
		out = append(out, keys...)
	}
	r.rounds = append(r.rounds, copied)
	return out, nil
}

func TestKeyed_RequiresKeySet(t *testing.T) {
	_, err := NewKeyed[string](func(context.Context, map[string][]string) ([]string, error) {
		return nil, nil
	})
	assert.Error(t, err)
}

func TestKeyed_BatchesAndTerminates(t *testing.T) {
	rec := &keyedRecorder{}
	it, err := NewKeyed(rec.fetch, NewKeySet("id", makeKeys(250), 100))
	require.NoError(t, err)

	ctx := context.Background()
	var got []string
	for i := 0; i < 250; i++ {
		v, err := it.Next(ctx)
		require.NoError(t, err)
		got = append(got, v)
	}

	// 251st pull exhausts the sequence.
	_, err = it.Next(ctx)
	assert.ErrorIs(t, err, ErrNoMoreItems)

	require.Len(t, rec.rounds, 3, "250 keys at 100 per batch must cost exactly 3 fetches")
	assert.Len(t, rec.rounds[0]["id"], 100)
	assert.Len(t, rec.rounds[1]["id"], 100)
	assert.Len(t, rec.rounds[2]["id"], 50)
	assert.Len(t, got, 250)

	// Exhaustion is sticky: no further fetches happen.
	_, err = it.Next(ctx)
	assert.ErrorIs(t, err, ErrNoMoreItems)
	assert.Len(t, rec.rounds, 3)
}

func TestKeyed_DuplicateKeys(t *testing.T) {
	rec := &keyedRecorder{}
	it, err := NewKeyed(rec.fetch, NewKeySet("id", []string{"a", "a", "b"}, 100))
	require.NoError(t, err)

	got, err := Collect[string](context.Background(), it)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, got)
	require.Len(t, rec.rounds, 1)
	assert.Equal(t, []string{"a", "b"}, rec.rounds[0]["id"])
}

func TestKeyed_LockStepKeySets(t *testing.T) {
	rec := &keyedRecorder{}
	it, err := NewKeyed(rec.fetch,
		NewKeySet("id", makeKeys(150), 100),
		NewKeySet("name", []string{"Fortnite", "Minecraft"}, 100),
	)
	require.NoError(t, err)

	_, err = Collect[string](context.Background(), it)
	require.NoError(t, err)

	require.Len(t, rec.rounds, 2)
	// Round 1 carries a batch from each set; round 2 only the leftover
	// IDs, the name set being exhausted.
	assert.Len(t, rec.rounds[0]["id"], 100)
	assert.Equal(t, []string{"Fortnite", "Minecraft"}, rec.rounds[0]["name"])
	assert.Len(t, rec.rounds[1]["id"], 50)
	_, ok := rec.rounds[1]["name"]
	assert.False(t, ok, "exhausted set must not appear in later rounds")
}

func TestKeyed_EmptyPageContributesNothing(t *testing.T) {
	calls := 0
	it, err := NewKeyed(func(_ context.Context, batches map[string][]string) ([]string, error) {
		calls++
		return nil, nil // service knows none of these keys
	}, NewKeySet("id", []string{"ghost-1", "ghost-2"}, 100))
	require.NoError(t, err)

	_, err = it.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreItems)
	assert.Equal(t, 1, calls, "the empty page still consumed one fetch")
}

func TestKeyed_FetchErrorIsRetryable(t *testing.T) {
	boom := errors.New("boom")
	rec := &keyedRecorder{fail: boom}
	it, err := NewKeyed(rec.fetch, NewKeySet("id", makeKeys(5), 100))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = it.Next(ctx)
	require.ErrorIs(t, err, boom)

	// The failed round must not have consumed the batch: clearing the
	// fault and retrying yields the full sequence.
	rec.fail = nil
	got, err := Collect[string](ctx, it)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	require.Len(t, rec.rounds, 1)
	assert.Len(t, rec.rounds[0]["id"], 5)
}

func TestOnce_SingleRound(t *testing.T) {
	calls := 0
	it := NewOnce(func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	})

	got, err := Collect[int](context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 1, calls)

	_, err = it.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreItems)
	assert.Equal(t, 1, calls, "a drained Once iterator must not refetch")
}

func TestOnce_ErrorRetries(t *testing.T) {
	calls := 0
	fail := true
	it := NewOnce(func(context.Context) ([]string, error) {
		calls++
		if fail {
			return nil, fmt.Errorf("transient fault")
		}
		return []string{"ok"}, nil
	})

	_, err := it.Next(context.Background())
	require.Error(t, err)

	fail = false
	v, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}
