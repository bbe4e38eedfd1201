// Package mutation runs store writes with optimistic cache updates: snapshot the
// affected entries, patch them, perform the write, then invalidate on success or
// restore the snapshot on failure.
package mutation

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"note-sync/internal/querycache"
	"note-sync/internal/result"
)

// DefaultTimeout bounds a single write.
const DefaultTimeout = 15 * time.Second

// State is the lifecycle stage of one mutation.
type State string

const (
	StatePendingOptimistic State = "pending_optimistic"
	StateInFlight          State = "in_flight"
	StateCommitted         State = "committed"
	StateRolledBack        State = "rolled_back"
)

// Plan describes the cache side of a mutation.
type Plan struct {
	// Name labels logs and metrics, e.g. "update_note".
	Name string
	// Snapshot lists the prefixes saved before Optimistic runs and restored on failure.
	Snapshot []querycache.Key
	// Optimistic applies the expected outcome to the cache. May be nil.
	Optimistic func(tx *querycache.Tx)
	// Invalidate lists the prefixes marked stale on success.
	Invalidate []querycache.Key
	// Remove lists exact keys dropped on success.
	Remove []querycache.Key
}

// Observer is told about every state transition.
type Observer func(name string, s State)

// Options configure a Coordinator.
type Options struct {
	Timeout  time.Duration
	Logger   *slog.Logger
	Metrics  *Metrics
	Observer Observer
}

// Coordinator applies Plans against one cache.
type Coordinator struct {
	cache    *querycache.Cache
	timeout  time.Duration
	log      *slog.Logger
	metrics  *Metrics
	observer Observer
	// settled counts finished mutations. A rollback that saw it move had its
	// snapshot overlap another mutation, so the restored values are not trusted.
	settled atomic.Uint64
}

// New creates a coordinator for cache.
func New(cache *querycache.Cache, opts Options) *Coordinator {
	c := &Coordinator{
		cache:    cache,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		observer: opts.Observer,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

func (c *Coordinator) transition(name string, s State) {
	if c.observer != nil {
		c.observer(name, s)
	}
}

// Execute runs write under plan. The returned result is the write's own result,
// or a network failure when the write outlives the timeout. By the time Execute
// returns, the cache is either committed (invalidated) or rolled back.
func Execute[T any](ctx context.Context, c *Coordinator, plan Plan, write func(ctx context.Context) result.Result[T]) result.Result[T] {
	start := time.Now()
	epoch := c.settled.Load()
	snap := c.cache.Snapshot(plan.Snapshot...)

	c.transition(plan.Name, StatePendingOptimistic)
	if plan.Optimistic != nil {
		c.cache.Update(plan.Optimistic)
	}

	c.transition(plan.Name, StateInFlight)
	wctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan result.Result[T], 1)
	go func() {
		done <- guarded(plan.Name, func() result.Result[T] { return write(wctx) })
	}()

	var res result.Result[T]
	select {
	case res = <-done:
	case <-wctx.Done():
		res = result.Fail[T](result.Network(wctx.Err()))
		go settleLate[T](c, plan, done)
	}

	if res.OK() {
		c.commit(plan)
		c.settled.Add(1)
		c.transition(plan.Name, StateCommitted)
		c.metrics.observe(plan.Name, StateCommitted, time.Since(start))
		return res
	}

	c.cache.Restore(snap)
	overlapped := c.settled.Add(1)-1 != epoch
	if overlapped {
		c.cache.Invalidate(plan.Snapshot...)
	}
	c.transition(plan.Name, StateRolledBack)
	c.metrics.observe(plan.Name, StateRolledBack, time.Since(start))
	c.log.Info("mutation rolled back",
		"mutation", plan.Name,
		"restored", snap.Len(),
		"overlapped", overlapped,
		"kind", res.Error.Kind,
		"error", res.Error.Message,
	)
	return res
}

func (c *Coordinator) commit(plan Plan) {
	c.cache.Update(func(tx *querycache.Tx) {
		tx.Remove(plan.Remove...)
		tx.Invalidate(plan.Invalidate...)
	})
}

// settleLate waits for a write that already timed out. If it ended up applied,
// the affected entries are marked stale so the next read reconciles with the store.
func settleLate[T any](c *Coordinator, plan Plan, done <-chan result.Result[T]) {
	res := <-done
	if !res.OK() {
		return
	}
	c.log.Warn("mutation applied after timeout", "mutation", plan.Name)
	c.cache.Invalidate(append(append([]querycache.Key{}, plan.Snapshot...), plan.Invalidate...)...)
}

func guarded[T any](name string, fn func() result.Result[T]) (res result.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = result.Fail[T](result.Rejected("Unexpected error", fmt.Errorf("mutation %s panicked: %v", name, r)))
		}
	}()
	return fn()
}
