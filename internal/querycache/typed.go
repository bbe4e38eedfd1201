package querycache

import (
	"context"
	"fmt"
)

// FetchAs is Fetch with a typed loader and result.
func FetchAs[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("querycache: %s holds %T", key, v)
	}
	return t, nil
}

// Getter is the read side shared by Cache and View.
type Getter interface {
	Get(key Key) (value any, stale bool, ok bool)
}

// GetAs is Get with a typed result. ok is false when the entry is missing or
// holds another type.
func GetAs[T any](g Getter, key Key) (value T, stale bool, ok bool) {
	v, stale, ok := g.Get(key)
	if !ok {
		return value, false, false
	}
	value, ok = v.(T)
	return value, stale, ok
}

// PatchAs adapts a typed patch function. Entries holding another type are skipped.
func PatchAs[T any](fn func(key Key, current T) (T, bool)) PatchFunc {
	return func(key Key, current any) (any, bool) {
		t, ok := current.(T)
		if !ok {
			return nil, false
		}
		return fn(key, t)
	}
}
