package pool

import (
	"runtime"

	"golang.org/x/time/rate"

	"github.com/utkarsh5026/taskstream/retry"
)

// Option is a functional option for configuring a Pool.
type Option func(*config)

type config struct {
	concurrency int
	policy      *retry.Policy
	limiter     *rate.Limiter
	progress    ProgressFunc
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithConcurrency sets the concurrency ceiling: the maximum number of items
// in flight at once. Defaults to runtime.GOMAXPROCS(0). Run rejects values
// below 1 with ErrInvalidConcurrency.
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		cfg.concurrency = n
	}
}

// WithRetry attaches a retry policy. Each item's unit is wrapped by the
// policy, so transient failures are retried with backoff before the item's
// outcome settles. Without a policy every item gets exactly one attempt.
func WithRetry(policy *retry.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithRateLimit throttles item starts across all workers. perSecond is the
// sustained start rate, burst the number of starts allowed at once. Useful
// when the units call an external service with its own rate limits.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cfg *config) {
		if perSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithProgress registers a progress callback. See ProgressFunc for the
// ordering guarantees.
func WithProgress(fn ProgressFunc) Option {
	return func(cfg *config) {
		cfg.progress = fn
	}
}
