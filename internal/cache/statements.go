// Package cache provides an LRU cache for prepared SQL statements.
package cache

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the default maximum number of cached statements.
const DefaultCapacity = 128

// StmtCache keeps prepared statements keyed by their SQL text, evicting and
// closing the least recently used one when full. Statement generation is the
// dominant per-query cost on SQLite, so repeated model operations reuse
// their plans.
type StmtCache struct {
	mu       sync.Mutex
	db       *sql.DB
	entries  map[string]*stmtEntry
	head     *stmtEntry // Most recently used.
	tail     *stmtEntry // Least recently used.
	capacity int

	// Metrics (atomic for lock-free reads).
	hits   atomic.Int64
	misses atomic.Int64
}

// stmtEntry is a doubly-linked list node for LRU tracking.
type stmtEntry struct {
	query string
	stmt  *sql.Stmt
	prev  *stmtEntry
	next  *stmtEntry
}

// New creates a statement cache over db holding up to capacity statements.
func New(db *sql.DB, capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &StmtCache{
		db:       db,
		entries:  make(map[string]*stmtEntry, capacity),
		capacity: capacity,
	}
}

// Get returns the prepared statement for query, preparing and caching it on
// first use. The returned statement is shared; callers must not close it.
func (c *StmtCache) Get(ctx context.Context, query string) (*sql.Stmt, error) {
	c.mu.Lock()

	if entry, ok := c.entries[query]; ok {
		c.moveToFront(entry)
		c.mu.Unlock()
		c.hits.Add(1)

		return entry.stmt, nil
	}

	c.mu.Unlock()
	c.misses.Add(1)

	// Prepare outside the lock; a statement is a roundtrip on some drivers.
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have prepared the same query meanwhile.
	if entry, ok := c.entries[query]; ok {
		c.moveToFront(entry)

		go stmt.Close()

		return entry.stmt, nil
	}

	entry := &stmtEntry{query: query, stmt: stmt}

	c.entries[query] = entry
	c.addToFront(entry)

	for len(c.entries) > c.capacity && c.tail != nil {
		c.evictTail()
	}

	return stmt, nil
}

// Stats returns cache statistics.
func (c *StmtCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Entries:  len(c.entries),
		Capacity: c.capacity,
	}
}

// Hits returns the total cache hit count (atomic, lock-free).
func (c *StmtCache) Hits() int64 { return c.hits.Load() }

// Misses returns the total cache miss count (atomic, lock-free).
func (c *StmtCache) Misses() int64 { return c.misses.Load() }

// Close closes every cached statement and empties the cache. The cache
// remains usable afterwards.
func (c *StmtCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error

	for _, entry := range c.entries {
		if err := entry.stmt.Close(); err != nil && first == nil {
			first = err
		}
	}

	c.entries = make(map[string]*stmtEntry, c.capacity)
	c.head = nil
	c.tail = nil

	return first
}

// Stats holds cache performance metrics.
type Stats struct {
	Hits     int64
	Misses   int64
	Entries  int
	Capacity int
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// moveToFront moves an entry to the front of the LRU list (most recently used).
func (c *StmtCache) moveToFront(entry *stmtEntry) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

// addToFront adds an entry to the front of the LRU list.
func (c *StmtCache) addToFront(entry *stmtEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

// removeFromList removes an entry from the LRU list.
func (c *StmtCache) removeFromList(entry *stmtEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

// evictTail closes and removes the least recently used statement. In-flight
// uses of the statement finish; database/sql defers the close until then.
func (c *StmtCache) evictTail() {
	victim := c.tail
	if victim == nil {
		return
	}

	c.removeFromList(victim)
	delete(c.entries, victim.query)

	go victim.stmt.Close()
}
