package favorites

import (
	"sync"
	"time"

	"github.com/mrjordantanner/trnkt-backend/internal/models"
)

const (
	cacheSweepInterval = 10 * time.Minute
	cacheIdleTTL       = 30 * time.Minute
)

type cacheEntry struct {
	doc      *models.UserFavorites
	lastUsed time.Time
}

// Cache is a size-bounded map of userID → last-known favorites document.
// Entries are only written after a confirmed store write or a successful
// store read, so within one process a hit is never older than the last
// write this process made. Other processes' writes are not observed until
// the entry is evicted or invalidated; the store stays authoritative.
//
// Documents are deep-copied on the way in and out, so callers can mutate
// results freely.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	maxEntries int
}

// NewCache creates a cache holding at most maxEntries users and starts the
// idle-entry sweeper.
func NewCache(maxEntries int) *Cache {
	c := &Cache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
	}
	go c.sweep()
	return c
}

func (c *Cache) Get(userID string) (*models.UserFavorites, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	e.lastUsed = time.Now()
	return e.doc.Clone(), true
}

func (c *Cache) Set(userID string, doc *models.UserFavorites) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[userID]; !ok && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[userID] = &cacheEntry{doc: doc.Clone(), lastUsed: time.Now()}
}

// Invalidate drops one user's entry so the next read goes to the store.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the least-recently-used entry. Caller holds c.mu.
func (c *Cache) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range c.entries {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID = id
			oldest = e.lastUsed
		}
	}
	if oldestID != "" {
		delete(c.entries, oldestID)
	}
}

// sweep removes entries idle longer than cacheIdleTTL.
func (c *Cache) sweep() {
	for {
		time.Sleep(cacheSweepInterval)
		c.mu.Lock()
		for id, e := range c.entries {
			if time.Since(e.lastUsed) > cacheIdleTTL {
				delete(c.entries, id)
			}
		}
		c.mu.Unlock()
	}
}
