// Package taskstream runs many independent, failable operations under a
// bounded concurrency ceiling, with retry, explicit cancellation, and
// incremental decoding of byte streams into logical records.
//
// The package is the composition root over four small building blocks:
//
//   - cancel: a shareable, one-way cancellation token with reasons,
//     callbacks, and parent/child derivation.
//   - retry: error classification (transient / permanent / cancelled) and a
//     backoff-driven retry loop.
//   - pool: the batch scheduler — a fixed window of in-flight units, ordered
//     outcomes, serialized progress reporting.
//   - frame: a resumable decoder turning arbitrary byte chunks into
//     newline-delimited lines or SSE-style events.
//
// # Batches
//
//	exec := taskstream.New[string, []byte](
//	    taskstream.WithConcurrency(8),
//	    taskstream.WithRetryPolicy(retry.NewPolicy(retry.WithMaxAttempts(3))),
//	)
//	outcomes, err := exec.Execute(nil, urls, fetch)
//
// Execute returns one outcome per item, in input order, no matter which
// items finished first. Failures are collected per item, never fatal to the
// batch; fail-fast is layered by cancelling the shared token on the first
// failing outcome.
//
// # Streams
//
//	exec := taskstream.New[string, int]()
//	outcomes, err := taskstream.ExecuteStreams(exec, nil, urls, openBody,
//	    taskstream.StreamEvents,
//	    func(url string, rec frame.Record) error { return handle(rec) })
//
// Each item's stream gets its own decoder, fed chunk by chunk and flushed at
// EOF, so records split across network reads are never lost or duplicated.
package taskstream
