package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(Options{Now: clock.Now, FetchTimeout: time.Second}), clock
}

func value(v any) Fetcher {
	return func(context.Context) (any, error) { return v, nil }
}

// gated returns a fetcher that blocks until release is closed.
func gated(v any, started chan<- struct{}, release <-chan struct{}) Fetcher {
	return func(ctx context.Context) (any, error) {
		if started != nil {
			started <- struct{}{}
		}
		select {
		case <-release:
			return v, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func TestCache_FetchStoresAndHits(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "list", map[string]int{"limit": 20})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return []string{"a"}, nil
	}

	v, err := c.Fetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)

	v, err = c.Fetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)
	assert.Equal(t, int32(1), calls.Load())

	got, stale, ok := c.Get(key)
	assert.True(t, ok)
	assert.False(t, stale)
	assert.Equal(t, []string{"a"}, got)
}

func TestCache_StaleAfterWindow(t *testing.T) {
	c, clock := newTestCache()
	key := NewKey("user-stats")
	_, err := c.Fetch(context.Background(), key, value(1))
	require.NoError(t, err)

	clock.Advance(DefaultStaleTime - time.Millisecond)
	_, stale, _ := c.Get(key)
	assert.False(t, stale)

	clock.Advance(time.Millisecond)
	_, stale, _ = c.Get(key)
	assert.True(t, stale)

	v, err := c.Fetch(context.Background(), key, value(2))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_FetchErrorKeepsPreviousValue(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("user-stats")
	_, err := c.Fetch(context.Background(), key, value(1))
	require.NoError(t, err)
	c.Invalidate(key)

	boom := errors.New("boom")
	_, err = c.Fetch(context.Background(), key, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	v, stale, ok := c.Get(key)
	assert.True(t, ok)
	assert.True(t, stale)
	assert.Equal(t, 1, v)
	st, _ := c.State(key)
	assert.False(t, st.Fetching)
}

func TestCache_ConcurrentFetchesCoalesce(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "item", "n1")
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return gated("note", started, release)(ctx)
	}

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]any, waiters)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Fetch(context.Background(), key, fetch)
	}()
	<-started

	st, _ := c.State(key)
	assert.True(t, st.Fetching)

	for i := 1; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Fetch(context.Background(), key, fetch)
		}(i)
	}
	// let the joiners reach the flight
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "note", r)
	}
}

func TestCache_OlderResponseNeverOverwritesNewer(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "list", map[string]string{"search": "par"})

	startedA := make(chan struct{}, 1)
	releaseA := make(chan struct{})
	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_, _ = c.Fetch(context.Background(), key, gated("A", startedA, releaseA))
	}()
	<-startedA

	// a newer request supersedes the one in flight
	c.Invalidate(key)
	v, err := c.Fetch(context.Background(), key, value("B"))
	require.NoError(t, err)
	assert.Equal(t, "B", v)

	close(releaseA)
	<-doneA

	got, stale, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "B", got)
	assert.False(t, stale)
}

func TestCache_SupersededResponseArrivingFirstIsStale(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "list")

	startedA := make(chan struct{}, 1)
	releaseA := make(chan struct{})
	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_, _ = c.Fetch(context.Background(), key, gated("A", startedA, releaseA))
	}()
	<-startedA
	c.Invalidate(key)

	startedB := make(chan struct{}, 1)
	releaseB := make(chan struct{})
	doneB := make(chan struct{})
	go func() {
		defer close(doneB)
		_, _ = c.Fetch(context.Background(), key, gated("B", startedB, releaseB))
	}()
	<-startedB

	close(releaseA)
	<-doneA
	got, stale, _ := c.Get(key)
	assert.Equal(t, "A", got)
	assert.True(t, stale)

	close(releaseB)
	<-doneB
	got, stale, _ = c.Get(key)
	assert.Equal(t, "B", got)
	assert.False(t, stale)
}

func TestCache_RemovedKeyIsNotResurrected(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "item", "n1")
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), key, gated("note", started, release))
	}()
	<-started

	c.Remove(key)
	close(release)
	<-done

	_, _, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCache_WaiterMayLeaveLoadCompletes(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("activities", 10)
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, key, gated("feed", started, release))
		errCh <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	updated := make(chan Event, 1)
	unsubscribe := c.Subscribe(key, func(ev Event) { updated <- ev })
	defer unsubscribe()
	close(release)

	select {
	case ev := <-updated:
		assert.Equal(t, EventUpdated, ev.Type)
		assert.Equal(t, "feed", ev.Value)
	case <-time.After(time.Second):
		t.Fatal("abandoned load was not stored")
	}
}

func TestCache_FetchTimeout(t *testing.T) {
	c := New(Options{FetchTimeout: 10 * time.Millisecond})
	key := NewKey("user-stats")

	_, err := c.Fetch(context.Background(), key, gated(1, nil, make(chan struct{})))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, _, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCache_FetcherPanicBecomesError(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("user-stats")

	_, err := c.Fetch(context.Background(), key, func(context.Context) (any, error) { panic("kaboom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")

	v, err := c.Fetch(context.Background(), key, value(3))
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestCache_InvalidateByPrefix(t *testing.T) {
	c, _ := newTestCache()
	list := NewKey("notes", "list", map[string]int{"limit": 20})
	item := NewKey("notes", "item", "n1")
	feed := NewKey("activities", 10)
	for _, k := range []Key{list, item, feed} {
		_, err := c.Fetch(context.Background(), k, value(k.String()))
		require.NoError(t, err)
	}

	var events []Event
	unsubscribe := c.Subscribe(list, func(ev Event) { events = append(events, ev) })
	defer unsubscribe()

	c.Invalidate(NewKey("notes"))

	for _, k := range []Key{list, item} {
		_, stale, ok := c.Get(k)
		assert.True(t, ok)
		assert.True(t, stale, k.String())
	}
	_, stale, _ := c.Get(feed)
	assert.False(t, stale)
	require.Len(t, events, 1)
	assert.Equal(t, EventInvalidated, events[0].Type)
}

func TestCache_ListenersRunOutsideLock(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "item", "n1")
	var seen any
	unsubscribe := c.Subscribe(key, func(ev Event) {
		seen, _, _ = c.Get(ev.Key)
	})

	_, err := c.Fetch(context.Background(), key, value("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", seen)

	unsubscribe()
	unsubscribe()
	c.Remove(key)
	assert.Equal(t, "x", seen)
}

func TestCache_UpdatePatchOutranksInFlightLoad(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "item", "n1")
	_, err := c.Fetch(context.Background(), key, value("v1"))
	require.NoError(t, err)
	c.Invalidate(key)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), key, gated("v1-from-store", started, release))
	}()
	<-started

	c.Update(func(tx *Tx) {
		n := tx.Patch(NewKey("notes"), func(_ Key, cur any) (any, bool) {
			return cur.(string) + "-patched", true
		})
		assert.Equal(t, 1, n)
	})
	close(release)
	<-done

	v, _, _ := c.Get(key)
	assert.Equal(t, "v1-patched", v)
}

func TestCache_SnapshotRestoreIsExact(t *testing.T) {
	c, clock := newTestCache()
	list := NewKey("notes", "list")
	item := NewKey("notes", "item", "n1")
	_, err := c.Fetch(context.Background(), list, value([]string{"n1", "n2"}))
	require.NoError(t, err)
	clock.Advance(5 * time.Second)
	_, err = c.Fetch(context.Background(), item, value("n1"))
	require.NoError(t, err)
	c.Invalidate(item)

	before := map[string]State{}
	for _, k := range []Key{list, item} {
		before[k.String()], _ = c.State(k)
	}

	snap := c.Snapshot(NewKey("notes"))
	assert.Equal(t, 2, snap.Len())

	c.Update(func(tx *Tx) {
		tx.Patch(list, func(_ Key, _ any) (any, bool) { return []string{"n2"}, true })
		tx.Remove(item)
	})
	_, _, ok := c.Get(item)
	require.False(t, ok)

	var restored []Event
	unsubscribe := c.Subscribe(item, func(ev Event) { restored = append(restored, ev) })
	defer unsubscribe()

	c.Restore(snap)

	for _, k := range []Key{list, item} {
		after, ok := c.State(k)
		require.True(t, ok)
		assert.Equal(t, before[k.String()], after, k.String())
	}
	require.Len(t, restored, 1)
	assert.Equal(t, "n1", restored[0].Value)
}

func TestCache_RestoreAfterInvalidationStaysStale(t *testing.T) {
	c, _ := newTestCache()
	item := NewKey("notes", "item", "n1")
	_, err := c.Fetch(context.Background(), item, value("n1"))
	require.NoError(t, err)

	// The snapshot holds a value patched in by some earlier writer.
	c.Update(func(tx *Tx) {
		tx.Patch(item, func(Key, any) (any, bool) { return "n1-optimistic", true })
	})
	snap := c.Snapshot(item)
	c.Invalidate(item)

	c.Restore(snap)

	v, stale, ok := c.Get(item)
	require.True(t, ok)
	assert.Equal(t, "n1-optimistic", v)
	assert.True(t, stale, "a value invalidated after the snapshot must be refetched")

	v, err = c.Fetch(context.Background(), item, value("n1-stored"))
	require.NoError(t, err)
	assert.Equal(t, "n1-stored", v)
}

func newGCCache(gc time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(Options{Now: clock.Now, FetchTimeout: time.Second, GCTime: gc}), clock
}

func TestCache_SweepDropsIdleStaleEntries(t *testing.T) {
	c, clock := newGCCache(time.Minute)
	watched := NewKey("notes", "list", "watched")
	for _, k := range []Key{NewKey("notes", "list", "a"), watched, NewKey("notes", "list", "b")} {
		_, err := c.Fetch(context.Background(), k, value(k.String()))
		require.NoError(t, err)
	}
	unsubscribe := c.Subscribe(watched, func(Event) {})
	defer unsubscribe()

	clock.Advance(50 * time.Second)
	assert.Zero(t, c.Sweep(), "stale but used within the GC time")

	clock.Advance(20 * time.Second)
	fresh := NewKey("notes", "item", "n1")
	_, err := c.Fetch(context.Background(), fresh, value("n1"))
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	_, err = c.Fetch(context.Background(), fresh, value("n1"))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	_, _, ok := c.Get(watched)
	assert.True(t, ok, "entries with listeners are kept")
	_, _, ok = c.Get(fresh)
	assert.True(t, ok)
}

func TestCache_FetchSweepsDistinctKeys(t *testing.T) {
	c, clock := newGCCache(time.Minute)
	for i := range 500 {
		_, err := c.Fetch(context.Background(), NewKey("notes", "list", map[string]any{"search": i}), value(i))
		require.NoError(t, err)
	}
	require.Equal(t, 500, c.Len())

	clock.Advance(2 * time.Minute)
	_, err := c.Fetch(context.Background(), NewKey("notes", "list", map[string]any{"search": "next"}), value("next"))
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache()
	_, _ = c.Fetch(context.Background(), NewKey("a"), value(1))
	_, _ = c.Fetch(context.Background(), NewKey("b"), value(2))
	require.Equal(t, 2, c.Len())

	c.Clear()

	assert.Equal(t, 0, c.Len())
}

func TestCache_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(Options{Metrics: m})
	key := NewKey("user-stats")

	_, _ = c.Fetch(context.Background(), key, value(1))
	_, _ = c.Fetch(context.Background(), key, value(1))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settled.WithLabelValues("stored")))
}

func TestTyped(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("user-stats")

	n, err := FetchAs(context.Background(), c, key, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	got, stale, ok := GetAs[int](c, key)
	assert.True(t, ok)
	assert.False(t, stale)
	assert.Equal(t, 7, got)

	_, _, ok = GetAs[string](c, key)
	assert.False(t, ok)

	c.Update(func(tx *Tx) {
		tx.Patch(key, PatchAs(func(_ Key, cur int) (int, bool) { return cur + 1, true }))
	})
	got, _, _ = GetAs[int](c, key)
	assert.Equal(t, 8, got)
}

func TestCache_SweepMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(Options{Now: clock.Now, GCTime: time.Minute, Metrics: m})
	_, _ = c.Fetch(context.Background(), NewKey("a"), value(1))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicted))
}

func TestView(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("notes", "item", "n1")
	_, err := c.Fetch(context.Background(), key, value("n1"))
	require.NoError(t, err)

	view := c.View()
	var events []EventType
	unsubscribe := view.Subscribe(key, func(ev Event) { events = append(events, ev.Type) })
	defer unsubscribe()

	got, stale, ok := GetAs[string](view, key)
	require.True(t, ok)
	assert.Equal(t, "n1", got)
	assert.False(t, stale)

	view.Invalidate(NewKey("notes"))
	st, ok := view.State(key)
	require.True(t, ok)
	assert.True(t, st.Stale)
	assert.Equal(t, 1, view.Len())
	assert.Equal(t, []EventType{EventInvalidated}, events)
}
