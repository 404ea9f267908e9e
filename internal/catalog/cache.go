package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

type cacheEntry struct {
	materials []scoring.Material
	fetchedAt time.Time
}

// Cached memoizes a Source per category hint for ttl. Each List returns its
// own copy so callers get a stable snapshot.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{src: src, ttl: ttl, now: time.Now, entries: map[string]cacheEntry{}}
}

func (c *Cached) List(ctx context.Context, category string) ([]scoring.Material, error) {
	c.mu.RLock()
	e, ok := c.entries[category]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return snapshot(e.materials), nil
	}

	materials, err := c.src.List(ctx, category)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[category] = cacheEntry{materials: snapshot(materials), fetchedAt: c.now()}
	c.mu.Unlock()
	return materials, nil
}

// Invalidate drops every cached entry.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
}

func snapshot(in []scoring.Material) []scoring.Material {
	out := make([]scoring.Material, len(in))
	copy(out, in)
	return out
}
