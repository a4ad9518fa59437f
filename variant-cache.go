package servebuffer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"golang.org/x/sync/singleflight"
)

// VariantCache memoizes encoded variants per buffer instance.
//
// Entries are keyed by the identity of the buffer (its backing array and
// length) and the content-coding, never by content. This is only correct if
// buffers are not modified in place after being served. An entry goes away
// once its buffer is garbage collected, so replacing a buffer with a new one
// invalidates the old variants without any explicit eviction.
//
// The first encoder used for a buffer and coding wins: callers using
// different encoders for the same coding need separate caches. A variant
// must not share memory with its source buffer, or the entry keeps the
// buffer alive.
//
// It is safe for concurrent use. Concurrent misses for the same buffer and
// coding run the encoder once.
type VariantCache struct {
	mu      sync.Mutex
	entries map[variantKey]Variant
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

type variantKey struct {
	buf    weak.Pointer[byte]
	len    int
	coding string
}

// VariantCacheStats is a snapshot of cache counters.
type VariantCacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

var defaultVariantCache = NewVariantCache()

// DefaultVariantCache returns the cache used when Options.UnmutatedBuffers is
// set without a VariantCache.
func DefaultVariantCache() *VariantCache {
	return defaultVariantCache
}

func NewVariantCache() *VariantCache {
	return &VariantCache{
		entries: make(map[variantKey]Variant),
	}
}

// Get returns the variant of buf for coding, calling encode on a miss.
// Errors are not cached.
func (c *VariantCache) Get(ctx context.Context, buf []byte, coding string, encode Encoder) (Variant, error) {
	// no identity to key on
	if len(buf) == 0 {
		return encode(ctx, buf)
	}

	key := variantKey{weak.Make(&buf[0]), len(buf), coding}
	c.mu.Lock()
	variant, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
		return variant, nil
	}
	c.misses.Add(1)

	// the in-flight call keeps buf reachable, so the address cannot be reused
	flightKey := fmt.Sprintf("%p:%d:%s", &buf[0], len(buf), coding)
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		variant, err := encode(ctx, buf)
		if err != nil {
			return Variant{}, err
		}
		c.put(key, &buf[0], variant)
		return variant, nil
	})
	if err != nil {
		return Variant{}, err
	}
	return v.(Variant), nil
}

func (c *VariantCache) put(key variantKey, ptr *byte, variant Variant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = variant
	runtime.AddCleanup(ptr, c.evict, key)
}

func (c *VariantCache) evict(key variantKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops all entries.
func (c *VariantCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of cached variants.
func (c *VariantCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *VariantCache) Stats() VariantCacheStats {
	return VariantCacheStats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
