// Package cache holds a read-through cache of seasonal standings. The cache
// is an explicit dependency injected into handlers, with an explicit Refresh
// contract and a staleness flag returned alongside the data; nothing is
// refreshed behind the caller's back.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/leagueforge/league-engine/models"
)

// StandingsSource is the backing store the cache reads through to.
type StandingsSource interface {
	ListBySeason(ctx context.Context, seasonID string) ([]models.SeasonalStanding, error)
}

type entry struct {
	standings []models.SeasonalStanding
	fetchedAt time.Time
}

type StandingsCache struct {
	source StandingsSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]entry
}

func NewStandingsCache(source StandingsSource, ttl time.Duration) *StandingsCache {
	return &StandingsCache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the season's standings and whether they are stale. A miss
// reads through to the source; an expired entry is refreshed, and if the
// refresh fails the expired data is returned with stale=true instead of an
// error, so readers degrade gracefully during storage hiccups.
func (c *StandingsCache) Get(ctx context.Context, seasonID string) ([]models.SeasonalStanding, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[seasonID]
	c.mu.RUnlock()

	if ok && time.Since(e.fetchedAt) < c.ttl {
		return e.standings, false, nil
	}

	standings, err := c.Refresh(ctx, seasonID)
	if err != nil {
		if ok {
			return e.standings, true, nil
		}
		return nil, false, err
	}
	return standings, false, nil
}

// Refresh re-reads the season from the source and replaces the cached entry.
func (c *StandingsCache) Refresh(ctx context.Context, seasonID string) ([]models.SeasonalStanding, error) {
	standings, err := c.source.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[seasonID] = entry{standings: standings, fetchedAt: time.Now()}
	c.mu.Unlock()
	return standings, nil
}

// Put stores freshly computed standings directly, skipping a source
// round-trip. Used right after an import commits.
func (c *StandingsCache) Put(seasonID string, standings []models.SeasonalStanding) {
	c.mu.Lock()
	c.entries[seasonID] = entry{standings: standings, fetchedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate drops the season's entry; the next Get reads through.
func (c *StandingsCache) Invalidate(seasonID string) {
	c.mu.Lock()
	delete(c.entries, seasonID)
	c.mu.Unlock()
}
