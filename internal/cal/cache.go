package cal

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CacheKey identifies one cached CAL response. Per spec §4.1, collisions are
// impossible under this shape since it carries subscription, resource
// group, project-or-resource, and operation name together.
type CacheKey struct {
	Subscription string
	ResourceGroup string
	Resource     string
	Operation    string
}

func (k CacheKey) String() string {
	return strings.Join([]string{k.Subscription, k.ResourceGroup, k.Resource, k.Operation}, "\x00")
}

// Cache is CAL's per-run response cache. Entries are immutable for the
// life of the run (no TTL), and a miss is single-flighted across
// concurrent callers so only one upstream call happens per key even under
// N concurrent requesters.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
	group   singleflight.Group
}

// NewCache returns an empty, ready-to-use cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]interface{})}
}

// GetOrLoad returns the cached value for key, loading it via fn on first
// miss. Concurrent misses for the same key share one in-flight fetch.
func (c *Cache) GetOrLoad(ctx context.Context, key CacheKey, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	k := key.String()

	if v, ok := c.peek(k); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(k, func() (interface{}, error) {
		if v, ok := c.peek(k); ok {
			return v, nil
		}
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[k] = val
		c.mu.Unlock()
		return val, nil
	})
	return v, err
}

func (c *Cache) peek(k string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[k]
	return v, ok
}

// Len reports the number of distinct entries currently cached, used by
// tests asserting single-flight behavior.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
