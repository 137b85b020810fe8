package fx

import (
	"sync"
	"time"

	"cloud.google.com/go/civil"
)

// DefaultCurrentTTL is the freshness window for "current" rate entries.
const DefaultCurrentTTL = time.Hour

// Key identifies a cached rate observation. Exactly one of the two shapes is
// in play: a pinned calendar date (historical, immutable once written) or the
// current-rate sentinel (time-boxed). The Current flag keeps the two policies
// statically distinguishable instead of encoding them into a string key.
type Key struct {
	From    string
	To      string
	Date    civil.Date
	Current bool
}

// HistoricalKey pins a rate observation to a calendar date.
func HistoricalKey(from, to string, date civil.Date) Key {
	return Key{From: from, To: to, Date: date}
}

// CurrentKey marks a rate observation as "now", valid only within the TTL.
func CurrentKey(from, to string) Key {
	return Key{From: from, To: to, Current: true}
}

// Entry is one cached FX observation. FetchedAt matters only for current
// entries, where it drives staleness.
type Entry struct {
	Key       Key
	Rate      float64
	FetchedAt time.Time
}

// Cache is a process-local rate store. Losing it on restart is acceptable; it
// is a performance optimization, not a correctness-bearing store. It
// tolerates concurrent reads and concurrent first-writes to the same
// historical key: first write wins, later ones are no-ops.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given freshness window for current
// entries. A non-positive ttl falls back to DefaultCurrentTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCurrentTTL
	}
	return &Cache{
		entries: make(map[Key]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the entry for a key. An expired current entry is reported as
// absent; historical entries never expire.
func (c *Cache) Get(k Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[k]
	if !ok {
		return Entry{}, false
	}
	if k.Current && c.now().Sub(e.FetchedAt) >= c.ttl {
		return Entry{}, false
	}
	return e, true
}

// Put stores an entry. Historical keys are immutable once written; a rate
// for a fixed past day cannot legitimately change, so later writes are
// no-ops. Current keys are overwritten on every successful fetch.
func (c *Cache) Put(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !e.Key.Current {
		if _, exists := c.entries[e.Key]; exists {
			return
		}
	}
	c.entries[e.Key] = e
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
