package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is the hot tier: a bounded table of uncompressed audio keyed
// by phrase key. Eviction is FIFO by insertion order. Reads never reorder
// entries, so a frequently read phrase is still evicted once it becomes the
// oldest insertion. Callers and tests rely on this ordering.
type MemoryCache struct {
	capacity int // Maximum number of entries

	// Insertion order, front is newest
	items map[Key]*list.Element
	order *list.List

	// Synchronization
	mu sync.Mutex

	// Metrics
	hits      int64
	misses    int64
	evictions int64
}

// memoryCacheEntry represents an entry in the memory cache
type memoryCacheEntry struct {
	key       Key
	value     []byte
	timestamp time.Time
}

// NewMemoryCache creates a hot table holding at most capacity entries.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[Key]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a value from the table.
func (c *MemoryCache) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	c.hits++
	return elem.Value.(*memoryCacheEntry).value, true
}

// Put stores a value. Replacing an existing key keeps its insertion
// position. Inserting a new key into a full table evicts the oldest
// insertion, which is returned with evicted set to true.
func (c *MemoryCache) Put(key Key, value []byte) (evictedKey Key, evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*memoryCacheEntry)
		entry.value = value
		entry.timestamp = time.Now()
		return "", false
	}

	if c.order.Len() >= c.capacity {
		evictedKey, evicted = c.evictOldest()
	}

	entry := &memoryCacheEntry{
		key:       key,
		value:     value,
		timestamp: time.Now(),
	}
	c.items[key] = c.order.PushFront(entry)

	return evictedKey, evicted
}

// Delete removes an entry from the table.
func (c *MemoryCache) Delete(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}

	c.removeElement(elem)
	return true
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*list.Element)
	c.order.Init()
}

// Len returns the number of entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Capacity returns the maximum number of entries.
func (c *MemoryCache) Capacity() int {
	return c.capacity
}

// Contains checks if a key exists without touching the hit counters.
func (c *MemoryCache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Keys returns all keys, oldest insertion first.
func (c *MemoryCache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, c.order.Len())
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		keys = append(keys, elem.Value.(*memoryCacheEntry).key)
	}
	return keys
}

// Counters returns hits, misses and evictions since creation.
func (c *MemoryCache) Counters() (hits, misses, evictions int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits, c.misses, c.evictions
}

// evictOldest removes the oldest insertion (must be called with lock held).
func (c *MemoryCache) evictOldest() (Key, bool) {
	elem := c.order.Back()
	if elem == nil {
		return "", false
	}
	key := elem.Value.(*memoryCacheEntry).key
	c.removeElement(elem)
	c.evictions++
	return key, true
}

// removeElement removes an element from the table (must be called with lock held).
func (c *MemoryCache) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*memoryCacheEntry).key)
}
