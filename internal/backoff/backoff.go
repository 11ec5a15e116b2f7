// Package backoff implements the retry delay strategies used by the retry
// package: plain exponential growth, exponential growth with proportional
// jitter, and decorrelated jitter.
package backoff

import (
	"cmp"
	"math/rand"
	"sync"
	"time"
)

// Strategies never shift further than this; it keeps 1<<n inside int64.
const maxShift = 62

// Strategy computes the delay to wait before a retry attempt.
type Strategy interface {
	// NextDelay returns the delay before retry number n (0-indexed: 0 is the
	// first retry after the initial failure).
	NextDelay(n int) time.Duration
}

// Type selects a delay strategy.
type Type int

const (
	// Exponential doubles the delay on every retry: initial * 2^n.
	Exponential Type = iota
	// Jittered applies a random factor of 1±jitter to the exponential delay,
	// spreading out retries from tasks that failed at the same moment.
	Jittered
	// Decorrelated picks each delay at random between the initial delay and
	// three times the previous one (AWS-style decorrelated jitter). Each
	// delay depends on the previous delay rather than the attempt number,
	// which breaks up synchronized retry storms across many in-flight tasks.
	Decorrelated
)

// New builds a Strategy. initial and max bound every returned delay;
// jitterFactor only applies to the Jittered type and is clamped to [0, 1].
func New(t Type, initial, max time.Duration, jitterFactor float64) Strategy {
	switch t {
	case Jittered:
		return &jittered{
			initial: initial,
			max:     max,
			factor:  clamp(jitterFactor, 0, 1),
			rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
		}
	case Decorrelated:
		return &decorrelated{
			initial: initial,
			max:     max,
			prev:    initial,
			rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
		}
	default:
		return exponential{initial: initial, max: max}
	}
}

type exponential struct {
	initial, max time.Duration
}

func (e exponential) NextDelay(n int) time.Duration {
	return expDelay(n, e.initial, e.max)
}

type jittered struct {
	initial, max time.Duration
	factor       float64
	mu           sync.Mutex
	rng          *rand.Rand
}

func (j *jittered) NextDelay(n int) time.Duration {
	base := expDelay(n, j.initial, j.max)

	j.mu.Lock()
	multiplier := 1 + (j.rng.Float64()*2-1)*j.factor
	j.mu.Unlock()

	return clamp(time.Duration(float64(base)*multiplier), 0, j.max)
}

type decorrelated struct {
	initial, max time.Duration
	mu           sync.Mutex
	prev         time.Duration
	rng          *rand.Rand
}

// NextDelay implements sleep = random(initial, prev*3), capped at max.
func (d *decorrelated) NextDelay(n int) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n <= 0 {
		d.prev = d.initial
		return d.initial
	}

	upper := min(3*d.prev, d.max)
	span := upper - d.initial
	if span <= 0 {
		d.prev = d.initial
		return d.initial
	}

	delay := d.initial + time.Duration(d.rng.Int63n(int64(span)))
	d.prev = delay
	return delay
}

func expDelay(n int, initial, max time.Duration) time.Duration {
	if n < 0 {
		return 0
	}
	if n >= maxShift {
		return max
	}

	delay := initial << uint(n)
	if delay > max || delay < 0 {
		return max
	}
	return delay
}

func clamp[T cmp.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
