package sync

import "sync"

// ChangeListener is notified synchronously after every Put and Remove.
// Listeners must be cheap and idempotent; they may read the cache but must
// not mutate it.
type ChangeListener func(kind Kind, id string)

// Cache is the single source of truth for what the session currently
// believes about each entity. Entries are merged by id: an insert arriving
// twice (fetch plus live push) never produces a duplicate.
type Cache struct {
	mu        sync.RWMutex
	entities  map[Kind]map[string]Entity
	listeners []ChangeListener
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entities: make(map[Kind]map[string]Entity)}
}

// OnChange registers a recomputation listener.
func (c *Cache) OnChange(fn ChangeListener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Get returns the cached entity, if present.
func (c *Cache) Get(kind Kind, id string) (Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[kind][id]
	return e, ok
}

// Put upserts by id. When both the existing and the incoming entity carry a
// timestamp, last-write-wins: an incoming entity strictly older than the
// cached one is ignored (out-of-order push delivery). Entities without a
// timestamp overwrite unconditionally.
func (c *Cache) Put(kind Kind, e Entity) {
	c.mu.Lock()
	m := c.entities[kind]
	if m == nil {
		m = make(map[string]Entity)
		c.entities[kind] = m
	}
	if old, ok := m[e.EntityID()]; ok {
		if !old.CreatedTime().IsZero() && !e.CreatedTime().IsZero() && e.CreatedTime().Before(old.CreatedTime()) {
			c.mu.Unlock()
			return
		}
	}
	m[e.EntityID()] = e
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(kind, e.EntityID())
	}
}

// Remove deletes the entry if present.
func (c *Cache) Remove(kind Kind, id string) {
	c.mu.Lock()
	m := c.entities[kind]
	if _, ok := m[id]; !ok {
		c.mu.Unlock()
		return
	}
	delete(m, id)
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(kind, id)
	}
}

// All returns a snapshot of every entity of the kind, in no particular order.
func (c *Cache) All(kind Kind) []Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.entities[kind]
	out := make([]Entity, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}

// Len reports how many entities of the kind are cached.
func (c *Cache) Len(kind Kind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entities[kind])
}
