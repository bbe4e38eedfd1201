package querycache

import "time"

// PatchFunc maps the current value of an entry to its replacement. Returning
// false leaves the entry untouched.
type PatchFunc func(key Key, current any) (any, bool)

// Tx groups cache changes so listeners see them only after all of them are made.
// A Tx is valid only inside the Update callback.
type Tx struct {
	c       *Cache
	pending []delivery
}

// Update runs fn with exclusive access to the cache. Listeners are notified after
// fn returns and the lock is released.
func (c *Cache) Update(fn func(tx *Tx)) {
	tx := &Tx{c: c}
	c.mu.Lock()
	fn(tx)
	pending := tx.pending
	c.mu.Unlock()
	deliver(pending)
}

// Patch rewrites the value of every entry under prefix that holds one. A patched
// value outranks every load issued before it; freshness is left unchanged.
func (tx *Tx) Patch(prefix Key, fn PatchFunc) int {
	c := tx.c
	n := 0
	for _, e := range c.entries {
		if !e.hasValue || !e.key.HasPrefix(prefix) {
			continue
		}
		next, ok := fn(e.key, e.value)
		if !ok {
			continue
		}
		c.gen++
		e.value = next
		e.usedAt = c.now()
		e.applied = c.gen
		e.fetching = false
		tx.pending = append(tx.pending, delivery{c.listenersLocked(e.key), Event{Type: EventUpdated, Key: e.key, Value: next}})
		n++
	}
	return n
}

// Remove drops the exact keys.
func (tx *Tx) Remove(keys ...Key) {
	tx.pending = tx.c.removeLocked(tx.pending, keys)
}

// Invalidate marks every entry under the prefixes stale.
func (tx *Tx) Invalidate(prefixes ...Key) {
	tx.pending = tx.c.invalidateLocked(tx.pending, prefixes)
}

// Get reads the current value of key inside the transaction.
func (tx *Tx) Get(key Key) (any, bool) {
	e, ok := tx.c.entries[key.id()]
	if !ok || !e.hasValue {
		return nil, false
	}
	return e.value, true
}

type saved struct {
	key         Key
	value       any
	hasValue    bool
	fetchedAt   time.Time
	invalidated bool
	gen         uint64
}

// Snapshot is the saved state of a set of entries. Values are kept by reference,
// so callers must treat cached values as immutable and patch by replacement.
type Snapshot struct {
	entries []saved
}

// Len is the number of saved entries.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Snapshot saves every entry under the given prefixes.
func (c *Cache) Snapshot(prefixes ...Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var snap Snapshot
	for _, e := range c.entries {
		if !matchesAny(e.key, prefixes) {
			continue
		}
		snap.entries = append(snap.entries, saved{
			key:         e.key,
			value:       e.value,
			hasValue:    e.hasValue,
			fetchedAt:   e.fetchedAt,
			invalidated: e.invalidated,
			gen:         e.gen,
		})
	}
	return snap
}

// Restore puts every saved entry back as it was, recreating removed ones. Loads in
// flight for those entries can no longer overwrite them. An entry that was
// invalidated or reloaded after the snapshot was taken comes back stale: the saved
// value may itself be another mutation's optimistic patch.
func (c *Cache) Restore(snap Snapshot) {
	var pending []delivery

	c.mu.Lock()
	now := c.now()
	for _, s := range snap.entries {
		current, existed := c.entries[s.key.id()]
		moved := existed && current.gen != s.gen
		e := c.entryLocked(s.key)
		c.gen++
		e.value = s.value
		e.hasValue = s.hasValue
		e.fetchedAt = s.fetchedAt
		e.invalidated = s.invalidated || moved
		e.usedAt = now
		e.applied = c.gen
		e.gen = c.gen
		e.fetching = false
		pending = append(pending, delivery{c.listenersLocked(s.key), Event{Type: EventUpdated, Key: s.key, Value: s.value}})
	}
	c.mu.Unlock()

	deliver(pending)
}
