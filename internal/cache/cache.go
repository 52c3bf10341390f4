// Package cache provides the time-bounded calculation cache that keeps
// expensive regression and attribution work off the request path.
//
// The cache is the engine's only shared mutable structure: entries are
// keyed by (portfolio, as-of date, function), evicted after a fixed TTL,
// and replaced atomically rather than mutated in place. There is no
// module-level cache; one Cache is constructed per process and passed to
// the components that need it.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

// Cache is a TTL-bounded memoization layer in front of the calculation
// engine. Safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, any]
	log zerolog.Logger
}

// New creates a calculation cache holding at most size entries, each
// expiring ttl after being written.
func New(size int, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, any](size, nil, ttl),
		log: log.With().Str("component", "calc_cache").Logger(),
	}
}

// Key builds the canonical cache key for one cached function result.
func Key(portfolioID, asOf, function string) string {
	return fmt.Sprintf("%s|%s|%s", portfolioID, asOf, function)
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Set stores value under key, replacing any existing entry.
func (c *Cache) Set(key string, value any) {
	c.lru.Add(key, value)
}

// InvalidatePortfolio drops every cached entry for one portfolio. Called
// after a recalculation commits so readers see the new result set.
func (c *Cache) InvalidatePortfolio(portfolioID string) {
	prefix := portfolioID + "|"
	removed := 0
	for _, key := range c.lru.Keys() {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			c.lru.Remove(key)
			removed++
		}
	}
	if removed > 0 {
		c.log.Debug().Str("portfolio_id", portfolioID).Int("entries", removed).Msg("Invalidated cache entries")
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
