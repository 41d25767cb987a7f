// Package cache holds the embedding cache: an in-process LRU+TTL
// first tier, with an optional Redis-backed second tier so a cache
// miss on one instance can still be a hit against what another
// instance already computed.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// entry is one slot in the local cache's backing list.
type entry struct {
	key       string
	vector    model.EmbeddingVector
	expiresAt time.Time
}

// LocalCache is an in-process LRU cache of embeddings keyed by
// normalized query text, with a per-entry TTL on top of the
// capacity-based eviction. Safe for concurrent use.
type LocalCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List
}

// NewLocalCache builds a cache holding at most capacity entries, each
// valid for ttl after insertion.
func NewLocalCache(capacity int, ttl time.Duration) *LocalCache {
	return &LocalCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached vector for key, if present and not expired.
// A hit moves the entry to the front of the LRU order.
func (c *LocalCache) Get(key string) (model.EmbeddingVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}

	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.removeElement(el)
		return nil, false
	}

	c.order.MoveToFront(el)
	return e.vector, true
}

// Set inserts or updates key's cached vector, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *LocalCache) Set(key string, vector model.EmbeddingVector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.vector = vector
		e.expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{
		key:       key,
		vector:    vector,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Len reports the number of entries currently held, including any
// that have expired but haven't been evicted by a Get yet.
func (c *LocalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// removeElement must be called with c.mu held.
func (c *LocalCache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.items, e.key)
	c.order.Remove(el)
}
