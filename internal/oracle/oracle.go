// Package oracle provides instrument reference prices to the risk engine:
// an in-memory last-price cache, a random-walk mock source, and a Deribit
// websocket ticker feed that keeps the cache warm.
package oracle

import "sync"

// Cache maintains the last known price per instrument. The engine reads it
// as a cheap synchronous call; feeds update it from their own goroutines.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]float64
}

func NewCache() *Cache {
	return &Cache{prices: make(map[string]float64)}
}

// Set stores the latest price for an instrument.
func (c *Cache) Set(instrument string, price float64) {
	c.mu.Lock()
	c.prices[instrument] = price
	c.mu.Unlock()
}

// PriceOf returns the last known price, if any.
func (c *Cache) PriceOf(instrument string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[instrument]
	return p, ok
}

// Instruments returns all instruments with a cached price.
func (c *Cache) Instruments() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.prices))
	for ins := range c.prices {
		out = append(out, ins)
	}
	return out
}

// Snapshot returns a copy of the full price table.
func (c *Cache) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64, len(c.prices))
	for ins, p := range c.prices {
		out[ins] = p
	}
	return out
}
