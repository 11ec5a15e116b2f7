package taskstream

import (
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/utkarsh5026/taskstream/cancel"
	"github.com/utkarsh5026/taskstream/pool"
	"github.com/utkarsh5026/taskstream/retry"
)

// Option configures an Executor.
type Option func(*config)

type config struct {
	concurrency int
	policy      *retry.Policy
	timeout     time.Duration
	logger      *slog.Logger
	progress    pool.ProgressFunc
	perSecond   float64
	burst       int
	chunkSize   int
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		chunkSize:   defaultChunkSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithConcurrency sets the concurrency ceiling for every run.
// Defaults to runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		cfg.concurrency = n
	}
}

// WithRetryPolicy wraps every unit of work with the given retry policy.
func WithRetryPolicy(policy *retry.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithTimeout bounds each run: a child token is derived per run and
// auto-cancels after d, composing with caller-driven cancellation of the
// parent.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithLogger sets the structured logger for run lifecycle events.
// A nil logger discards everything, which is also the default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithProgress registers a per-run progress callback; see pool.ProgressFunc.
func WithProgress(fn pool.ProgressFunc) Option {
	return func(cfg *config) {
		cfg.progress = fn
	}
}

// WithRateLimit throttles unit starts across each run's workers.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cfg *config) {
		cfg.perSecond = perSecond
		cfg.burst = burst
	}
}

// WithChunkSize sets the read size used when decoding streams.
// Defaults to 4096 bytes.
func WithChunkSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.chunkSize = n
		}
	}
}

// Executor is the composition root: it owns the token derivation, wraps
// units with the retry policy, and delegates batches to the pool scheduler.
// No state is shared between runs beyond the configuration.
//
// Type parameters:
//   - I: the input item type
//   - O: the result type
type Executor[I any, O any] struct {
	conf *config
}

// New creates an Executor.
//
// Example:
//
//	exec := taskstream.New[string, []byte](
//	    taskstream.WithConcurrency(8),
//	    taskstream.WithRetryPolicy(retry.NewPolicy(retry.WithJitter(0.2))),
//	    taskstream.WithTimeout(30*time.Second),
//	)
//	outcomes, err := exec.Execute(nil, urls, fetch)
func New[I any, O any](opts ...Option) *Executor[I, O] {
	return &Executor[I, O]{conf: newConfig(opts...)}
}

// Execute runs unit over items under the executor's configuration and
// returns one outcome per item, in input order.
//
// A nil token gets a fresh root token. With WithTimeout configured, the run
// observes a per-run child token that auto-cancels at the deadline.
//
// Per-item failures are collected, never fatal to the batch; callers wanting
// fail-fast semantics cancel the token when they see a failing outcome. The
// error return covers programmer errors only (see pool.Run).
func (e *Executor[I, O]) Execute(token *cancel.Token, items []I, unit pool.UnitOfWork[I, O]) ([]pool.Outcome[O], error) {
	if token == nil {
		token = cancel.New()
	}
	if e.conf.timeout > 0 {
		child, stop := token.ChildWithTimeout(e.conf.timeout)
		defer stop()
		token = child
	}

	logger := e.conf.logger.With(slog.String("run_id", uuid.NewString()))
	logger.Info("run started",
		slog.Int("items", len(items)),
		slog.Int("concurrency", e.conf.concurrency))

	opts := []pool.Option{
		pool.WithConcurrency(e.conf.concurrency),
	}
	if e.conf.policy != nil {
		opts = append(opts, pool.WithRetry(e.conf.policy))
	}
	if e.conf.perSecond > 0 {
		opts = append(opts, pool.WithRateLimit(e.conf.perSecond, e.conf.burst))
	}
	if e.conf.progress != nil {
		opts = append(opts, pool.WithProgress(e.conf.progress))
	}

	start := time.Now()
	outcomes, err := pool.New[I, O](opts...).Run(token, items, unit)
	if err != nil {
		logger.Error("run rejected", slog.Any("error", err))
		return nil, err
	}

	var succeeded, failed, cancelled int
	for _, o := range outcomes {
		switch {
		case o.Ok():
			succeeded++
		case o.Kind == retry.KindCancelled:
			cancelled++
		default:
			failed++
		}
	}
	logger.Info("run finished",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
		slog.Int("cancelled", cancelled))

	return outcomes, nil
}
