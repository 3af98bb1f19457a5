// Package page implements lazy pull-iteration over paginated Helix
// result sets.
//
// Two disciplines share the same Next contract:
//
//   - Keyed: the query names an explicit set of IDs or names. Keys are
//     deduplicated, partitioned into fixed-size batches, and one batch
//     per key set is consumed on every buffer refill.
//   - Cursor: broad listing queries. Each refill requests the next
//     page behind an opaque continuation cursor, bounded by a caller
//     budget.
//
// Iterators are one-shot and single-caller: a sequence cannot be
// reset, and one iterator must not be polled from multiple goroutines.
// Fetch errors propagate unchanged and leave the iterator state
// untouched, so a failed Next may simply be called again.
package page
