// Package reportcache memoizes aggregation results per owner and filter.
// Entries expire on a short TTL and every write for an owner drops all of
// that owner's entries, so a stale read can outlive a write by at most the
// TTL.
package reportcache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL bounds how long a cached report can serve reads.
const DefaultTTL = 30 * time.Second

// DefaultMaxSize bounds the number of cached reports across all owners.
const DefaultMaxSize = 256

// Cache is an LRU cache with TTL expiry and per-owner invalidation.
type Cache[T any] struct {
	mu        sync.Mutex
	maxSize   int
	ttl       time.Duration
	items     map[string]*list.Element
	lru       *list.List
	ownerKeys map[int64]map[string]struct{}
}

type cacheItem[T any] struct {
	expiresAt time.Time
	key       string
	data      T
	ownerID   int64
}

// New creates a report cache. Non-positive arguments fall back to the
// package defaults.
func New[T any](maxSize int, ttl time.Duration) *Cache[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		maxSize:   maxSize,
		ttl:       ttl,
		items:     make(map[string]*list.Element),
		lru:       list.New(),
		ownerKeys: make(map[int64]map[string]struct{}),
	}
}

func cacheKey(ownerID int64, signature string) string {
	return fmt.Sprintf("%d|%s", ownerID, signature)
}

// Get retrieves a cached report for the owner and filter signature.
func (c *Cache[T]) Get(ownerID int64, signature string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[cacheKey(ownerID, signature)]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

// Put stores a report for the owner and filter signature.
func (c *Cache[T]) Put(ownerID int64, signature string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(ownerID, signature)
	item := &cacheItem[T]{
		key:       key,
		ownerID:   ownerID,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	keys, ok := c.ownerKeys[ownerID]
	if !ok {
		keys = make(map[string]struct{})
		c.ownerKeys[ownerID] = keys
	}
	keys[key] = struct{}{}

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// InvalidateOwner drops every cached report for the owner. The write path
// calls this after each committed transaction create or delete.
func (c *Cache[T]) InvalidateOwner(ownerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.ownerKeys[ownerID] {
		if elem, exists := c.items[key]; exists {
			c.removeElement(elem)
		}
	}
	delete(c.ownerKeys, ownerID)
}

// Size returns the current number of cached reports.
func (c *Cache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// CleanExpired removes all expired entries and returns how many were dropped.
func (c *Cache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

func (c *Cache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)

	if keys, ok := c.ownerKeys[item.ownerID]; ok {
		delete(keys, item.key)
		if len(keys) == 0 {
			delete(c.ownerKeys, item.ownerID)
		}
	}
}
