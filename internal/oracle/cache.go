package oracle

import (
	"sync"
	"time"
)

type cacheEntry struct {
	price     int64
	fetchedAt time.Time
}

// priceCache bounds upstream call rate under concurrent duel activity: one
// fetch per symbol per TTL.
type priceCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newPriceCache(ttl time.Duration) *priceCache {
	return &priceCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *priceCache) get(symbol string, now time.Time) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[symbol]
	if !ok || now.Sub(e.fetchedAt) >= c.ttl {
		return 0, false
	}
	return e.price, true
}

func (c *priceCache) put(symbol string, price int64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = cacheEntry{price: price, fetchedAt: now}
}
