package pool

import (
	"github.com/utkarsh5026/taskstream/cancel"
	"github.com/utkarsh5026/taskstream/retry"
)

// UnitOfWork is the operation applied to each item. It receives the run's
// cancellation token so it can stop early; an operation that stops because of
// the token should return the token's error (or wrap it) so its outcome is
// classified as cancelled rather than failed.
//
// Type parameters:
//   - I: the input item type
//   - O: the result type
type UnitOfWork[I any, O any] func(token *cancel.Token, item I) (O, error)

// ProgressFunc is invoked after each item settles, with the number of items
// settled so far and the total. Calls are serialized; done strictly increases
// from 1 to total, one call per item.
type ProgressFunc func(done, total int)

// Outcome is the result of exactly one item. Outcomes are returned in input
// order regardless of completion order.
//
// Type parameters:
//   - O: the result type
type Outcome[O any] struct {
	// Value holds the unit's result. Only meaningful when Err is nil.
	Value O
	// Err is the item's final error after retries were exhausted, or nil on
	// success.
	Err error
	// Kind classifies Err; retry.KindUnknown when Err is nil.
	Kind retry.ErrorKind
	// Attempts is how many times the unit actually ran for this item. Zero
	// means the item was never started (cancelled while queued).
	Attempts int
	// Index is the item's position in the input slice.
	Index int
}

// Ok reports whether the item succeeded.
func (o Outcome[O]) Ok() bool { return o.Err == nil }

// indexedItem pairs an item with its input position while it moves through
// the dispatch channel.
type indexedItem[I any] struct {
	item  I
	index int
}
