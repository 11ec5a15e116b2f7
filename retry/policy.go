// Package retry decides whether failed work should run again and how long to
// wait before it does.
//
// Errors are classified into transient, permanent, and cancelled kinds (see
// Classify); only transient failures are retried, up to a configured attempt
// budget, with a growing backoff delay between attempts. The Do loop executes
// a function under a Policy while honouring a cancellation token: a retry due
// to fire is skipped as soon as the token is cancelled.
package retry

import (
	"errors"
	"time"

	"github.com/utkarsh5026/taskstream/cancel"
	"github.com/utkarsh5026/taskstream/internal/backoff"
)

// Decision is the outcome of consulting a Policy about a failed attempt.
// The zero value means give up.
type Decision struct {
	// Again is true when the attempt should be retried.
	Again bool
	// Delay is how long to wait before the retry. Meaningless when Again is
	// false.
	Delay time.Duration
}

// GiveUp is the Decision that stops retrying.
var GiveUp = Decision{}

// Policy decides retries for a class of operations. A single Policy may be
// shared by many concurrently-running tasks.
type Policy struct {
	maxAttempts int
	strategy    backoff.Strategy
}

type policyConfig struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	backoffType  backoff.Type
	jitterFactor float64
}

// PolicyOption configures a Policy.
type PolicyOption func(*policyConfig)

// WithMaxAttempts sets the total attempt budget, including the first attempt.
// Values below 1 are ignored.
func WithMaxAttempts(n int) PolicyOption {
	return func(cfg *policyConfig) {
		if n >= 1 {
			cfg.maxAttempts = n
		}
	}
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) PolicyOption {
	return func(cfg *policyConfig) {
		if d > 0 {
			cfg.initialDelay = d
		}
	}
}

// WithMaxDelay caps the delay between any two attempts.
func WithMaxDelay(d time.Duration) PolicyOption {
	return func(cfg *policyConfig) {
		if d > 0 {
			cfg.maxDelay = d
		}
	}
}

// WithJitter switches to jittered exponential backoff. factor is the relative
// jitter width, e.g. 0.2 for ±20%.
func WithJitter(factor float64) PolicyOption {
	return func(cfg *policyConfig) {
		cfg.backoffType = backoff.Jittered
		cfg.jitterFactor = factor
	}
}

// WithDecorrelatedJitter switches to AWS-style decorrelated jitter, which
// spreads retries of many simultaneously-failing tasks more evenly than
// per-attempt jitter.
func WithDecorrelatedJitter() PolicyOption {
	return func(cfg *policyConfig) {
		cfg.backoffType = backoff.Decorrelated
	}
}

// NewPolicy creates a retry policy.
//
// Defaults: 3 attempts, exponential backoff starting at 100ms, capped at 30s.
func NewPolicy(opts ...PolicyOption) *Policy {
	cfg := &policyConfig{
		maxAttempts:  3,
		initialDelay: 100 * time.Millisecond,
		maxDelay:     30 * time.Second,
		backoffType:  backoff.Exponential,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Policy{
		maxAttempts: cfg.maxAttempts,
		strategy:    backoff.New(cfg.backoffType, cfg.initialDelay, cfg.maxDelay, cfg.jitterFactor),
	}
}

// MaxAttempts returns the policy's total attempt budget.
func (p *Policy) MaxAttempts() int { return p.maxAttempts }

// Decide reports whether a failure should be retried. attempt is the number
// of attempts already made (1 after the first failure). Only transient errors
// within the attempt budget yield a retry; permanent, cancelled, and
// unclassified errors give up immediately.
func (p *Policy) Decide(err error, attempt int) Decision {
	if Classify(err) != KindTransient {
		return GiveUp
	}
	if attempt >= p.maxAttempts {
		return GiveUp
	}
	return Decision{Again: true, Delay: p.strategy.NextDelay(attempt - 1)}
}

// Do runs fn under policy p, honouring token.
//
// It returns fn's value on success, or the last observed error once the
// policy gives up, along with the number of attempts actually made. A nil
// policy means a single attempt. If the token is cancelled before the first
// attempt, fn is never invoked and the error is the token's *cancel.Cancelled
// with zero attempts. If the token is cancelled while a retry delay is
// pending, the retry is skipped and the returned error joins the cancellation
// with the last attempt's failure, so both remain diagnosable.
func Do[O any](p *Policy, token *cancel.Token, fn func() (O, error)) (O, int, error) {
	var zero O

	if token.IsCancelled() {
		return zero, 0, token.Err()
	}

	attempts := 0
	for {
		value, err := fn()
		attempts++
		if err == nil {
			return value, attempts, nil
		}

		var decision Decision
		if p != nil {
			decision = p.Decide(err, attempts)
		}
		if !decision.Again {
			return zero, attempts, err
		}

		timer := time.NewTimer(decision.Delay)
		select {
		case <-timer.C:
		case <-token.Done():
			timer.Stop()
			return zero, attempts, errors.Join(token.Err(), err)
		}
	}
}
