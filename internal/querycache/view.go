package querycache

// View is the part of a Cache that callers outside the mutation path may use:
// reading, subscribing and marking entries stale. It cannot write values.
type View struct {
	c *Cache
}

// View returns a read-mostly handle on c.
func (c *Cache) View() View {
	return View{c: c}
}

func (v View) Get(key Key) (value any, stale bool, ok bool) { return v.c.Get(key) }

func (v View) State(key Key) (State, bool) { return v.c.State(key) }

func (v View) Subscribe(key Key, l Listener) func() { return v.c.Subscribe(key, l) }

// Invalidate marks entries under the prefixes stale so the next read refetches.
func (v View) Invalidate(prefixes ...Key) { v.c.Invalidate(prefixes...) }

func (v View) Len() int { return v.c.Len() }
