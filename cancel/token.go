// Package cancel provides an explicit, shareable cancellation token.
//
// A Token is a one-way flag: it starts active and can be moved to the
// cancelled state exactly once, optionally carrying a reason. Any number of
// goroutines may hold the same token; cancelling is idempotent and safe under
// concurrent calls. Tokens form trees: a child derived with Child or
// ChildWithTimeout is cancelled when its parent is, but cancelling a child
// never affects the parent.
//
// Unlike context.Context, a Token carries a human-readable reason and exposes
// cancellation callbacks, which is what cooperating workers need to report
// *why* their work was stopped.
package cancel

import (
	"sync"
	"time"
)

// Cancelled is the error reported by operations that did not finish because
// a token was cancelled. It is distinguishable from ordinary failures via
// errors.As.
type Cancelled struct {
	// Reason is the string passed to Cancel, possibly empty.
	Reason string
}

func (c *Cancelled) Error() string {
	if c.Reason == "" {
		return "cancelled"
	}
	return "cancelled: " + c.Reason
}

// Token is a shared, one-way cancellation flag.
// The zero value is not usable; create tokens with New.
type Token struct {
	mu        sync.Mutex
	done      chan struct{}
	cancelled bool
	reason    string
	callbacks []func(reason string)
}

// New creates an active root token.
func New() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel moves the token to the cancelled state and invokes all registered
// callbacks with the given reason. Only the first call has any effect;
// subsequent calls (with any reason) are no-ops.
func (t *Token) Cancel(reason string) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	t.reason = reason
	cbs := t.callbacks
	t.callbacks = nil
	close(t.done)
	t.mu.Unlock()

	// Callbacks run outside the lock so they may touch the token freely.
	for _, cb := range cbs {
		cb(reason)
	}
}

// IsCancelled reports whether Cancel has been called on this token or on any
// of its ancestors.
func (t *Token) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Reason returns the reason the token was cancelled with, or the empty string
// while the token is still active.
func (t *Token) Reason() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Err returns nil while the token is active, and a *Cancelled carrying the
// cancellation reason once it has been cancelled.
func (t *Token) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cancelled {
		return nil
	}
	return &Cancelled{Reason: t.reason}
}

// Done returns a channel that is closed when the token is cancelled, for use
// in select loops alongside timers and I/O.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// OnCancel registers fn to be invoked at most once, when the token is
// cancelled. If the token is already cancelled, fn runs immediately on the
// calling goroutine.
func (t *Token) OnCancel(fn func(reason string)) {
	t.mu.Lock()
	if t.cancelled {
		reason := t.reason
		t.mu.Unlock()
		fn(reason)
		return
	}
	t.callbacks = append(t.callbacks, fn)
	t.mu.Unlock()
}

// Child derives a token that is cancelled (with the parent's reason) whenever
// the parent is cancelled. Cancelling the child directly does not affect the
// parent.
func (t *Token) Child() *Token {
	child := New()
	t.OnCancel(func(reason string) {
		child.Cancel(reason)
	})
	return child
}

// ChildWithTimeout derives a child token that cancels itself after d elapses.
// The returned stop function releases the timer early; calling it after the
// deadline fired, or more than once, is harmless. Timeout cancellation
// composes with parent cancellation and with direct Cancel calls on the
// child, whichever happens first wins.
func (t *Token) ChildWithTimeout(d time.Duration) (*Token, func()) {
	child := t.Child()
	timer := time.AfterFunc(d, func() {
		child.Cancel("timeout after " + d.String())
	})
	child.OnCancel(func(string) {
		timer.Stop()
	})
	return child, func() { timer.Stop() }
}
