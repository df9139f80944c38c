package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Operation describes a memoized call: a stable name plus the lifetime of
// its cached results.
type Operation struct {
	Name string
	TTL  time.Duration
}

// Key derives the cache key for an invocation from the operation name and
// its positional arguments, in call order. Identical operations with
// identical arguments always map to the same key.
func (o Operation) Key(args ...string) string {
	return o.KeyNamed(args, nil)
}

// KeyNamed derives the cache key from positional arguments in call order
// followed by named arguments sorted by name.
func (o Operation) KeyNamed(args []string, named map[string]string) string {
	parts := make([]string, 0, 1+len(args)+len(named))
	parts = append(parts, o.Name)
	parts = append(parts, args...)

	if len(named) > 0 {
		keys := make([]string, 0, len(named))
		for k := range named {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+named[k])
		}
	}

	return strings.Join(parts, ":")
}

// Do returns the cached result for key when present, otherwise invokes fn,
// stores its result under the operation's TTL, and returns it. Errors are
// never cached. Concurrent misses on the same key are not coalesced; each
// caller invokes fn and the last writer's expiry wins.
func Do[T any](ctx context.Context, c *Cache, op Operation, key string, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	result, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, result, op.TTL)
	return result, nil
}
