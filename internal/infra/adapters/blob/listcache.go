package blob

import (
	"context"
	"sync"
	"time"

	"github.com/rolltable/rolltable/internal/application/metric"
)

// DefaultListTTL bounds how long a cached listing may be served.
const DefaultListTTL = 60 * time.Second

type listEntry struct {
	files    []string
	cachedAt time.Time
}

// ListCache sits in front of Store.List and serves listings from memory for
// up to a TTL. Writers that touch objects under a prefix must call
// Invalidate for that prefix before their next read. Entries live only in
// this process and are safe to lose on restart.
type ListCache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]listEntry
}

func NewListCache(store Store, ttl time.Duration) *ListCache {
	return &ListCache{
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]listEntry),
	}
}

// NewListCacheWithNow injects the time source. Tests use this to age
// entries without sleeping.
func NewListCacheWithNow(store Store, ttl time.Duration, now func() time.Time) *ListCache {
	c := NewListCache(store, ttl)
	c.now = now
	return c
}

// Get returns the listing for the prefix and whether it came from cache.
func (c *ListCache) Get(ctx context.Context, prefix string) ([]string, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[prefix]
	if ok && c.now().Sub(entry.cachedAt) < c.ttl {
		files := entry.files
		c.mu.Unlock()
		metric.RecordListCacheLookup(true)
		return files, true, nil
	}
	c.mu.Unlock()

	metric.RecordListCacheLookup(false)

	files, err := c.store.List(ctx, prefix)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[prefix] = listEntry{files: files, cachedAt: c.now()}
	c.mu.Unlock()

	return files, false, nil
}

// Invalidate drops the cached entry for the prefix. It returns before any
// subsequent Get for the prefix can observe the stale listing.
func (c *ListCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, prefix)
}
