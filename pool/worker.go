package pool

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/utkarsh5026/taskstream/cancel"
	"github.com/utkarsh5026/taskstream/retry"
)

// worker drains the item channel until it closes. Each worker owns one
// concurrency slot: it processes one item at a time, so the number of
// in-flight items never exceeds the worker count.
func (p *Pool[I, O]) worker(
	token *cancel.Token,
	itemChan <-chan indexedItem[I],
	tr *tracker[I, O],
	unit UnitOfWork[I, O],
) {
	for it := range itemChan {
		tr.settle(it.item, p.runOne(token, it, unit))
	}
}

// runOne produces the single Outcome for one item.
func (p *Pool[I, O]) runOne(token *cancel.Token, it indexedItem[I], unit UnitOfWork[I, O]) Outcome[O] {
	outcome := Outcome[O]{Index: it.index}

	// Queued items short-circuit on a cancelled token without ever starting.
	if token.IsCancelled() {
		outcome.Err = token.Err()
		outcome.Kind = retry.KindCancelled
		return outcome
	}

	if p.conf.limiter != nil {
		if err := waitForSlot(p.conf.limiter, token); err != nil {
			outcome.Err = err
			outcome.Kind = retry.Classify(err)
			return outcome
		}
	}

	if p.beforeStart != nil {
		p.beforeStart(it.item)
	}

	value, attempts, err := retry.Do(p.conf.policy, token, func() (O, error) {
		return runWithRecovery(token, it.item, unit)
	})

	outcome.Attempts = attempts
	if err != nil {
		outcome.Err = err
		outcome.Kind = retry.Classify(err)
		return outcome
	}

	outcome.Value = value
	return outcome
}

// runWithRecovery invokes the unit, converting a panic into this item's
// failure so one bad item cannot take down a worker. Panics are marked
// permanent: re-running a panicking unit is not a retry candidate.
func runWithRecovery[I any, O any](token *cancel.Token, item I, unit UnitOfWork[I, O]) (result O, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = retry.MarkPermanent(fmt.Errorf("unit panic: %v\nstack trace:\n%s", r, buf[:n]))
		}
	}()

	return unit(token, item)
}

// waitForSlot blocks until the rate limiter admits one start, or the token is
// cancelled, whichever comes first. The reservation is returned to the
// limiter on cancellation.
func waitForSlot(limiter *rate.Limiter, token *cancel.Token) error {
	reservation := limiter.Reserve()
	if !reservation.OK() {
		return retry.MarkPermanent(errors.New("pool: rate limiter cannot admit a single start"))
	}

	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	select {
	case <-timer.C:
		return nil
	case <-token.Done():
		timer.Stop()
		reservation.Cancel()
		return token.Err()
	}
}

// tracker owns the outcome slice and the completion count. settle is the one
// serialized section of a run: it records the outcome, bumps the count, and
// fires the callbacks, so progress values strictly increase and fire exactly
// once per item, before the settling worker picks up its next item.
type tracker[I any, O any] struct {
	mu       sync.Mutex
	outcomes []Outcome[O]
	done     int
	total    int
	progress ProgressFunc
	afterEnd func(I, Outcome[O])
}

func (t *tracker[I, O]) settle(item I, outcome Outcome[O]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.outcomes[outcome.Index] = outcome
	t.done++

	if t.progress != nil {
		t.progress(t.done, t.total)
	}
	if t.afterEnd != nil {
		t.afterEnd(item, outcome)
	}
}
