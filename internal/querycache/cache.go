// Package querycache keeps the last known result of each query, keyed by entity
// kind and normalized parameters, and coordinates loading them from the store.
package querycache

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"
)

// Defaults.
const (
	DefaultStaleTime    = 30 * time.Second
	DefaultFetchTimeout = 15 * time.Second
	DefaultGCTime       = 5 * time.Minute
)

// EventType tells a listener what happened to an entry.
type EventType string

const (
	EventUpdated     EventType = "updated"
	EventInvalidated EventType = "invalidated"
	EventRemoved     EventType = "removed"
)

// Event is delivered to listeners of the affected key.
type Event struct {
	Type  EventType
	Key   Key
	Value any
}

// Listener is called synchronously, after the cache lock is released.
type Listener func(Event)

// Fetcher loads the value of one key from the store.
type Fetcher func(ctx context.Context) (any, error)

// State is a point-in-time view of an entry.
type State struct {
	Value     any
	HasValue  bool
	Stale     bool
	Fetching  bool
	FetchedAt time.Time
}

// Options configure a Cache. Zero fields take defaults.
type Options struct {
	StaleTime    time.Duration
	FetchTimeout time.Duration
	// GCTime is how long a stale entry nobody listens to is kept after its last use.
	GCTime  time.Duration
	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *Metrics
}

type entry struct {
	key         Key
	value       any
	hasValue    bool
	fetchedAt   time.Time
	invalidated bool
	fetching    bool
	usedAt      time.Time
	// gen is the generation of the latest load issued for this entry, applied the
	// generation of the value it holds. A load result is stored only when its
	// generation is newer than applied.
	gen     uint64
	applied uint64
}

// Cache is a keyed store of query results. It is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	listeners map[string]map[ulid.ULID]Listener
	gen       uint64
	flights   singleflight.Group

	staleTime    time.Duration
	fetchTimeout time.Duration
	gcTime       time.Duration
	lastSweep    time.Time
	now          func() time.Time
	log          *slog.Logger
	metrics      *Metrics
}

// New creates an empty cache.
func New(opts Options) *Cache {
	c := &Cache{
		entries:      make(map[string]*entry),
		listeners:    make(map[string]map[ulid.ULID]Listener),
		staleTime:    opts.StaleTime,
		fetchTimeout: opts.FetchTimeout,
		gcTime:       opts.GCTime,
		now:          opts.Now,
		log:          opts.Logger,
		metrics:      opts.Metrics,
	}
	if c.staleTime <= 0 {
		c.staleTime = DefaultStaleTime
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = DefaultFetchTimeout
	}
	if c.gcTime <= 0 {
		c.gcTime = DefaultGCTime
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.lastSweep = c.now()
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// Get returns the cached value of key and whether it is stale.
func (c *Cache) Get(key Key) (value any, stale bool, ok bool) {
	st, ok := c.State(key)
	if !ok || !st.HasValue {
		return nil, false, false
	}
	return st.Value, st.Stale, true
}

// State reports the entry of key, if any.
func (c *Cache) State(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.id()]
	if !ok {
		return State{}, false
	}
	return State{
		Value:     e.value,
		HasValue:  e.hasValue,
		Stale:     c.isStale(e),
		Fetching:  e.fetching,
		FetchedAt: e.fetchedAt,
	}, true
}

func (c *Cache) isStale(e *entry) bool {
	return e.invalidated || c.now().Sub(e.fetchedAt) >= c.staleTime
}

// Fetch returns the cached value of key while it is fresh. Otherwise it loads it
// with fetch; concurrent callers of the same key share one load. A caller whose
// ctx ends stops waiting, but the load itself runs to completion under the fetch
// timeout and its result is stored if still relevant.
func (c *Cache) Fetch(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	id := key.id()

	c.mu.Lock()
	if now := c.now(); now.Sub(c.lastSweep) >= c.gcTime/2 {
		c.sweepLocked(now)
	}
	e := c.entryLocked(key)
	e.usedAt = c.now()
	if e.hasValue && !c.isStale(e) {
		v := e.value
		c.mu.Unlock()
		c.metrics.lookup("hit")
		return v, nil
	}
	outcome := "join"
	if !e.fetching {
		c.gen++
		e.gen = c.gen
		e.fetching = true
		outcome = "miss"
	}
	gen := e.gen
	c.mu.Unlock()
	c.metrics.lookup(outcome)

	flight := id + "#" + strconv.FormatUint(gen, 10)
	ch := c.flights.DoChan(flight, func() (any, error) {
		return c.load(ctx, key, gen, fetch)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, key Key, gen uint64, fetch Fetcher) (v any, err error) {
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("querycache: fetch %s panicked: %v", key, r)
		}
		c.metrics.load(key.Kind(), time.Since(start).Seconds())
		c.settle(key, gen, v, err)
	}()

	return fetch(lctx)
}

// settle applies the outcome of the load issued with generation gen.
func (c *Cache) settle(key Key, gen uint64, v any, err error) {
	c.mu.Lock()
	e, ok := c.entries[key.id()]
	if !ok {
		c.mu.Unlock()
		c.metrics.settle("discarded")
		return
	}
	if e.gen == gen {
		e.fetching = false
	}
	if err != nil {
		c.mu.Unlock()
		c.metrics.settle("failed")
		c.log.Debug("query load failed", "key", key.String(), "error", err)
		return
	}
	if gen <= e.applied {
		c.mu.Unlock()
		c.metrics.settle("discarded")
		c.log.Debug("discarding out-of-order response", "key", key.String(), "gen", gen, "applied", e.applied)
		return
	}

	e.value = v
	e.hasValue = true
	e.applied = gen
	e.fetchedAt = c.now()
	e.usedAt = e.fetchedAt
	// A newer load or an invalidation was issued after this one started.
	e.invalidated = gen < e.gen
	outcome := "stored"
	if e.invalidated {
		outcome = "superseded"
	}
	ls := c.listenersLocked(key)
	c.mu.Unlock()

	c.metrics.settle(outcome)
	notify(ls, Event{Type: EventUpdated, Key: key, Value: v})
}

// entryLocked returns the entry of key, creating it when missing. A new entry
// ignores every load issued before it existed.
func (c *Cache) entryLocked(key Key) *entry {
	id := key.id()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, gen: c.gen, applied: c.gen, usedAt: c.now()}
		c.entries[id] = e
	}
	return e
}

// Sweep drops every entry that is stale, not loading, has no listeners and was
// last used more than the GC time ago. It returns the number of dropped entries.
// Fetch sweeps on its own every half GC time; Sweep is for idle caches.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

func (c *Cache) sweepLocked(now time.Time) int {
	c.lastSweep = now
	n := 0
	for id, e := range c.entries {
		if e.fetching || len(c.listeners[id]) > 0 || !c.isStale(e) || now.Sub(e.usedAt) < c.gcTime {
			continue
		}
		delete(c.entries, id)
		n++
	}
	if n > 0 {
		c.metrics.evict(n)
		c.log.Debug("swept idle entries", "evicted", n, "remaining", len(c.entries))
	}
	return n
}

// Invalidate marks every entry under the given prefixes stale. Loads already in
// flight for those entries are superseded: the next Fetch starts a new one.
func (c *Cache) Invalidate(prefixes ...Key) {
	var pending []delivery
	c.mu.Lock()
	pending = c.invalidateLocked(pending, prefixes)
	c.mu.Unlock()
	deliver(pending)
}

func (c *Cache) invalidateLocked(pending []delivery, prefixes []Key) []delivery {
	for _, e := range c.entries {
		if !matchesAny(e.key, prefixes) {
			continue
		}
		c.gen++
		e.gen = c.gen
		e.fetching = false
		e.invalidated = true
		pending = append(pending, delivery{c.listenersLocked(e.key), Event{Type: EventInvalidated, Key: e.key, Value: e.value}})
	}
	return pending
}

// Remove drops the exact keys. Loads in flight for them are discarded when they
// complete.
func (c *Cache) Remove(keys ...Key) {
	var pending []delivery
	c.mu.Lock()
	pending = c.removeLocked(pending, keys)
	c.mu.Unlock()
	deliver(pending)
}

func (c *Cache) removeLocked(pending []delivery, keys []Key) []delivery {
	for _, k := range keys {
		if _, ok := c.entries[k.id()]; !ok {
			continue
		}
		delete(c.entries, k.id())
		pending = append(pending, delivery{c.listenersLocked(k), Event{Type: EventRemoved, Key: k}})
	}
	return pending
}

// Clear drops every entry, e.g. on sign-out.
func (c *Cache) Clear() {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.key)
	}
	pending := c.removeLocked(nil, keys)
	c.mu.Unlock()
	deliver(pending)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribe registers l for events on key. The returned func unregisters it.
func (c *Cache) Subscribe(key Key, l Listener) func() {
	id := key.id()
	lid := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)

	c.mu.Lock()
	set, ok := c.listeners[id]
	if !ok {
		set = make(map[ulid.ULID]Listener)
		c.listeners[id] = set
	}
	set[lid] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners[id], lid)
			if len(c.listeners[id]) == 0 {
				delete(c.listeners, id)
			}
		})
	}
}

func (c *Cache) listenersLocked(key Key) []Listener {
	set := c.listeners[key.id()]
	if len(set) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(set))
	for _, l := range set {
		out = append(out, l)
	}
	return out
}

type delivery struct {
	listeners []Listener
	event     Event
}

func deliver(pending []delivery) {
	for _, d := range pending {
		notify(d.listeners, d.event)
	}
}

func notify(ls []Listener, ev Event) {
	for _, l := range ls {
		l(ev)
	}
}

func matchesAny(k Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if k.HasPrefix(p) {
			return true
		}
	}
	return false
}
