package pool

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/taskstream/cancel"
)

var (
	// ErrInvalidConcurrency is returned by Run when the configured
	// concurrency is below 1.
	ErrInvalidConcurrency = errors.New("pool: concurrency must be at least 1")

	// ErrNilUnit is returned by Run when no unit of work is supplied.
	ErrNilUnit = errors.New("pool: unit of work is nil")
)

// Pool runs batches of independent items under a fixed concurrency ceiling.
//
// A Pool carries configuration only; it holds no state between runs and a
// single Pool may be used for any number of concurrent Run calls.
//
// Type parameters:
//   - I: the input item type
//   - O: the result type
type Pool[I any, O any] struct {
	conf        *config
	beforeStart func(I)
	afterEnd    func(I, Outcome[O])
}

// New creates a pool with the given options.
//
// Example:
//
//	p := pool.New[string, []byte](
//	    pool.WithConcurrency(8),
//	    pool.WithRetry(retry.NewPolicy(retry.WithMaxAttempts(3))),
//	)
//	outcomes, err := p.Run(nil, urls, fetch)
func New[I any, O any](opts ...Option) *Pool[I, O] {
	return &Pool[I, O]{conf: newConfig(opts...)}
}

// OnBeforeStart registers a hook invoked just before an item's unit runs.
// Items that never start (cancelled while queued) do not trigger it.
func (p *Pool[I, O]) OnBeforeStart(fn func(item I)) {
	p.beforeStart = fn
}

// OnAfterEnd registers a hook invoked when an item settles, after the
// progress callback, inside the same serialized section.
func (p *Pool[I, O]) OnAfterEnd(fn func(item I, outcome Outcome[O])) {
	p.afterEnd = fn
}

// Run executes unit over every item and returns one Outcome per item, indexed
// by input position regardless of completion order.
//
// At most the configured concurrency of items is in flight at any moment;
// items start in input order, and a freed slot is refilled as soon as its
// occupant settles. Concurrency of 1 degenerates to sequential execution,
// concurrency >= len(items) to unconstrained fan-out.
//
// A single item's failure never aborts its siblings: every failure is
// collected into that item's Outcome and the batch keeps going. Callers that
// want fail-fast semantics cancel the token themselves when they observe a
// failure. Once the token is cancelled, items still queued settle as
// cancelled failures without their unit ever running, while in-flight items
// are left to observe the token on their own.
//
// The returned error is non-nil only for programmer errors (nil unit,
// concurrency < 1), never for per-item failures. A nil token is treated as a
// fresh, never-cancelled one.
func (p *Pool[I, O]) Run(token *cancel.Token, items []I, unit UnitOfWork[I, O]) ([]Outcome[O], error) {
	if unit == nil {
		return nil, ErrNilUnit
	}
	if p.conf.concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}
	if token == nil {
		token = cancel.New()
	}

	outcomes := make([]Outcome[O], len(items))
	if len(items) == 0 {
		return outcomes, nil
	}

	tr := &tracker[I, O]{
		outcomes: outcomes,
		total:    len(items),
		progress: p.conf.progress,
		afterEnd: p.afterEnd,
	}

	workers := min(p.conf.concurrency, len(items))
	itemChan := make(chan indexedItem[I], workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			p.worker(token, itemChan, tr, unit)
			return nil
		})
	}

	// Feed every item, in order. Workers drain the channel even after
	// cancellation (settling queued items as cancelled), so this never
	// blocks forever.
	go func() {
		defer close(itemChan)
		for i, item := range items {
			itemChan <- indexedItem[I]{item: item, index: i}
		}
	}()

	_ = g.Wait()
	return outcomes, nil
}
