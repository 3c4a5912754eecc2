package layout

import (
	"sync"

	"irforge/internal/types"
)

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	mu     sync.Mutex
	byType map[types.TypeID]cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[types.TypeID]cacheEntry, 64)}
}

func (c *cache) get(id types.TypeID) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byType[id]
	return e, ok
}

func (c *cache) put(id types.TypeID, e cacheEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.byType[id] = e
	c.mu.Unlock()
}

// invalidate drops every cached layout; named struct bodies may change
// after their first use.
func (c *cache) invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	clear(c.byType)
	c.mu.Unlock()
}
