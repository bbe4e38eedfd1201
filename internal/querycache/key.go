package querycache

import (
	"encoding/json"
	"fmt"
	"strings"
)

const sep = "\x1f"

// Key identifies a cache entry: an entity kind followed by normalized parameters.
// Two keys built from equal values are equal regardless of map key order.
type Key struct {
	kind  string
	parts []string
}

// NewKey builds a key from kind and params. Each param is reduced to canonical
// JSON, so structs, maps and scalars all work as parameters.
func NewKey(kind string, params ...any) Key {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, canonical(kind))
	for _, p := range params {
		parts = append(parts, canonical(p))
	}
	return Key{kind: kind, parts: parts}
}

// canonical marshals v, then round-trips it through a generic value so that
// object keys come out sorted.
func canonical(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// Kind is the entity kind the key was built with.
func (k Key) Kind() string {
	return k.kind
}

// Len is the number of parts, kind included.
func (k Key) Len() int {
	return len(k.parts)
}

// HasPrefix reports whether every part of p matches the leading parts of k.
func (k Key) HasPrefix(p Key) bool {
	if len(p.parts) > len(k.parts) {
		return false
	}
	for i, part := range p.parts {
		if k.parts[i] != part {
			return false
		}
	}
	return true
}

// Equal reports whether k and o identify the same entry.
func (k Key) Equal(o Key) bool {
	return k.id() == o.id()
}

// String renders the key as a JSON array, e.g. ["notes","list",{"limit":20}].
func (k Key) String() string {
	return "[" + strings.Join(k.parts, ",") + "]"
}

func (k Key) id() string {
	return strings.Join(k.parts, sep)
}
