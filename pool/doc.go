// Package pool runs batches of independent, failable operations under a
// fixed concurrency ceiling.
//
// The primary type is Pool[I, O]: give it a slice of items and a unit of
// work, and it returns exactly one Outcome per item, in input order, no
// matter which items finished first. Concurrency comes from overlapping
// in-flight units; the ceiling bounds how many are in flight at once.
//
// # Basic usage
//
//	p := pool.New[string, []byte](pool.WithConcurrency(4))
//	outcomes, err := p.Run(nil, urls, func(token *cancel.Token, url string) ([]byte, error) {
//	    return fetch(token, url)
//	})
//
// # Retries
//
// Attach a retry.Policy and transient failures are retried with backoff
// before an item's outcome settles:
//
//	p := pool.New[string, []byte](
//	    pool.WithConcurrency(4),
//	    pool.WithRetry(retry.NewPolicy(retry.WithMaxAttempts(3), retry.WithJitter(0.2))),
//	)
//
// # Cancellation
//
// Run takes a *cancel.Token shared by every unit. Cancelling it stops queued
// items immediately (they settle as cancelled failures without starting) and
// lets in-flight units observe the token and wind down on their own.
//
// # Error handling
//
// Per-item failures never abort the batch: each failure is collected into
// its item's Outcome and classified (transient, permanent, cancelled).
// Fail-fast is layered on top by cancelling the token from a progress
// callback or outcome hook. Panics inside a unit become that item's failure,
// with a stack trace, rather than crashing the worker.
package pool
