package parse

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map"
)

// Context accumulates parsed results keyed by binding key. A key may hold
// any number of values; insertion order of keys and of values per key is
// preserved. Contexts are scoped to a single parse or completion
// invocation and are not safe for concurrent use.
type Context struct {
	values *orderedmap.OrderedMap // key string -> []interface{}
}

// ContextSnapshot is a copy of the context mapping taken at a point in
// time. The copy is shallow: the mapping and the per-key value slices are
// duplicated, stored values themselves are not. Mutating a stored value in
// place is therefore visible across snapshots - a deliberate tradeoff, as
// elements are expected to store fresh values rather than rewrite old ones.
type ContextSnapshot struct {
	values *orderedmap.OrderedMap
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{values: orderedmap.New()}
}

// PutOne appends a value under key.
func (c *Context) PutOne(key string, value interface{}) {
	var existing []interface{}
	if v, ok := c.values.Get(key); ok {
		existing = v.([]interface{})
	}
	c.values.Set(key, append(existing, value))
}

// GetAll returns all values stored under key, in insertion order.
func (c *Context) GetAll(key string) []interface{} {
	v, ok := c.values.Get(key)
	if !ok {
		return nil
	}
	stored := v.([]interface{})
	all := make([]interface{}, len(stored))
	copy(all, stored)

	return all
}

// Has reports whether at least one value is stored under key.
func (c *Context) Has(key string) bool {
	v, ok := c.values.Get(key)

	return ok && len(v.([]interface{})) > 0
}

// One returns the single value stored under key. The second return is
// false when the key holds zero values or more than one.
func (c *Context) One(key string) (interface{}, bool) {
	v, ok := c.values.Get(key)
	if !ok {
		return nil, false
	}
	stored := v.([]interface{})
	if len(stored) != 1 {
		return nil, false
	}

	return stored[0], true
}

// RequireOne returns the single value stored under key, failing with an
// ErrNotFound-wrapped error when the key is empty and an ErrTooMany-wrapped
// error when it holds several values.
func (c *Context) RequireOne(key string) (interface{}, error) {
	v, ok := c.values.Get(key)
	if !ok || len(v.([]interface{})) == 0 {
		return nil, fmt.Errorf("%w for key %q", ErrNotFound, key)
	}
	stored := v.([]interface{})
	if len(stored) > 1 {
		return nil, fmt.Errorf("%w for key %q (%d values)", ErrTooMany, key, len(stored))
	}

	return stored[0], nil
}

// String returns the single value under key rendered as a string.
func (c *Context) String(key string) (string, error) {
	v, err := c.RequireOne(key)
	if err != nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}

	return fmt.Sprint(v), nil
}

// Bool returns the single value under key as a bool. Non-bool values fail.
func (c *Context) Bool(key string) (bool, error) {
	v, err := c.RequireOne(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("value for key %q is %T, not bool", key, v)
	}

	return b, nil
}

// Keys returns all keys in insertion order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, c.values.Len())
	for pair := c.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key.(string))
	}

	return keys
}

// Snapshot captures the current mapping. O(size of the mapping).
func (c *Context) Snapshot() ContextSnapshot {
	return ContextSnapshot{values: copyValues(c.values)}
}

// Restore resets the mapping to the state captured by the snapshot. The
// snapshot remains valid and may be restored again.
func (c *Context) Restore(s ContextSnapshot) {
	c.values = copyValues(s.values)
}

func copyValues(src *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	dst := orderedmap.New()
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		stored := pair.Value.([]interface{})
		values := make([]interface{}, len(stored))
		copy(values, stored)
		dst.Set(pair.Key, values)
	}

	return dst
}
