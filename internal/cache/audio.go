package cache

import (
	"container/list"
	"sync"
)

// AudioCache stores audio handles by key. With a zero capacity it never
// evicts and only Clear empties it; with a positive capacity the least
// recently used entry is evicted once the bound is reached.
type AudioCache struct {
	capacity int

	// LRU implementation
	items    map[Key]*list.Element
	eviction *list.List

	mu sync.Mutex

	stats Stats
}

type entry struct {
	key    Key
	handle string
}

// New creates an audio cache holding at most capacity entries. Zero means
// unbounded.
func New(capacity int) *AudioCache {
	if capacity < 0 {
		capacity = 0
	}
	return &AudioCache{
		capacity: capacity,
		items:    make(map[Key]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the handle stored under key.
func (c *AudioCache) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return "", false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*entry).handle, true
}

// Contains reports whether key is cached without touching LRU order or
// hit counters.
func (c *AudioCache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Put stores handle under key, replacing any previous handle.
func (c *AudioCache) Put(key Key, handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		e := elem.Value.(*entry)
		e.handle = handle
		return
	}

	if c.capacity > 0 {
		for c.eviction.Len() >= c.capacity {
			c.evictOldest()
		}
	}

	c.items[key] = c.eviction.PushFront(&entry{key: key, handle: handle})
}

// Clear removes every entry. Counters are kept.
func (c *AudioCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*list.Element)
	c.eviction.Init()
	c.stats.Clears++
}

// Len returns the number of cached handles.
func (c *AudioCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Stats returns a snapshot of the cache counters.
func (c *AudioCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = len(c.items)
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
	return s
}

// evictOldest removes the least recently used entry (must be called with lock held).
func (c *AudioCache) evictOldest() {
	elem := c.eviction.Back()
	if elem == nil {
		return
	}
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
	c.stats.Evictions++
}

// Stats holds cache counters.
type Stats struct {
	Capacity  int // 0 when unbounded
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
	Clears    int64
	HitRate   float64
}
