package retry

import (
	"context"
	"errors"

	"github.com/utkarsh5026/taskstream/cancel"
)

// ErrorKind is the retry taxonomy every failure is classified into.
type ErrorKind int

const (
	// KindUnknown marks errors that carry no classification. They are never
	// retried; an error of unknown provenance is not safely repeatable.
	KindUnknown ErrorKind = iota
	// KindTransient marks retryable faults: network hiccups, 5xx-style
	// server errors, timeouts on the remote side.
	KindTransient
	// KindPermanent marks faults retrying cannot fix: malformed input,
	// 4xx-style client errors.
	KindPermanent
	// KindCancelled marks work that did not finish because a cancellation
	// signal was observed, as opposed to failing on its own.
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// MarkTransient wraps err so Classify reports it as KindTransient.
// Returns nil when err is nil.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// MarkPermanent wraps err so Classify reports it as KindPermanent.
// Returns nil when err is nil.
func MarkPermanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Classify unwraps err and reports its ErrorKind. Cancellation outranks the
// other kinds: an error chain containing a *cancel.Cancelled (or
// context.Canceled / context.DeadlineExceeded) is KindCancelled no matter how
// it is otherwise marked.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var cancelled *cancel.Cancelled
	if errors.As(err, &cancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}

	var transient *transientError
	if errors.As(err, &transient) {
		return KindTransient
	}

	var permanent *permanentError
	if errors.As(err, &permanent) {
		return KindPermanent
	}

	return KindUnknown
}
