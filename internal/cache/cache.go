// Package cache stores generated SQL per entity type.
package cache

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/coregx/entmap/internal/shape"
)

// Kind identifies a statement kind.
type Kind int

// Statement kinds.
const (
	Insert Kind = iota
	Update
	Delete
	DeleteAll
	DeleteByID
	Truncate
	Select
	SelectByID
	Count
	BulkInsert
	Upsert

	numKinds = int(Upsert) + 1
)

var kindNames = [...]string{
	Insert:     "insert",
	Update:     "update",
	Delete:     "delete",
	DeleteAll:  "delete_all",
	DeleteByID: "delete_by_id",
	Truncate:   "truncate",
	Select:     "select",
	SelectByID: "select_by_id",
	Count:      "count",
	BulkInsert: "bulk_insert",
	Upsert:     "upsert",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shaped reports whether statements of kind k depend on a filter shape.
func (k Kind) Shaped() bool {
	switch k {
	case Select, SelectByID, Count, Delete:
		return true
	}
	return false
}

// slot holds one cached statement and the filter shape it was built for.
type slot struct {
	sql   string
	shape shape.ID
	ok    bool
}

// entry is everything cached for one entity type.
type entry struct {
	version uint64
	slots   [numKinds]slot
	upsert  *UpsertEntry
}

// Cache maps entity types to their cached statements. A slot holds a single
// statement per kind; asking for a kind with a different filter shape is a
// miss and the next Put replaces the slot. Entries built from an older
// descriptor version are dropped on access.
type Cache struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*entry

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[reflect.Type]*entry)}
}

// Get returns the statement of kind k for type t, if one was stored for the
// same descriptor version and filter shape.
func (c *Cache) Get(t reflect.Type, version uint64, k Kind, id shape.ID) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[t]
	var s slot
	if ok && e.version == version {
		s = e.slots[k]
	}
	c.mu.RUnlock()

	if !s.ok || s.shape != id {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return s.sql, true
}

// Put stores sql as the statement of kind k for type t.
func (c *Cache) Put(t reflect.Type, version uint64, k Kind, id shape.ID, sql string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(t, version)
	e.slots[k] = slot{sql: sql, shape: id, ok: true}
}

// Upsert returns the upsert entry of type t.
func (c *Cache) Upsert(t reflect.Type, version uint64) (*UpsertEntry, bool) {
	c.mu.RLock()
	e, ok := c.entries[t]
	var u *UpsertEntry
	if ok && e.version == version {
		u = e.upsert
	}
	c.mu.RUnlock()

	if u == nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return u, true
}

// PutUpsert stores u unless another caller stored an entry first, and
// returns the entry that is now cached.
func (c *Cache) PutUpsert(t reflect.Type, version uint64, u *UpsertEntry) *UpsertEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(t, version)
	if e.upsert == nil {
		e.upsert = u
	}
	return e.upsert
}

// entryLocked returns the entry of t for version, replacing a stale one.
// Must be called with the write lock held.
func (c *Cache) entryLocked(t reflect.Type, version uint64) *entry {
	e, ok := c.entries[t]
	if !ok || e.version != version {
		e = &entry{version: version}
		c.entries[t] = e
	}
	return e
}

// Invalidate drops every statement cached for t.
func (c *Cache) Invalidate(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, t)
}

// Clear drops everything and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[reflect.Type]*entry)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats holds cache metrics.
type Stats struct {
	Entities int     // Number of entity types with cached statements.
	Hits     uint64  // Lookups answered from the cache.
	Misses   uint64  // Lookups that required building a statement.
	HitRate  float64 // hits / (hits + misses).
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Entities: size,
		Hits:     hits,
		Misses:   misses,
		HitRate:  hitRate,
	}
}
