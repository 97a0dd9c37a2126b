package client

import (
	"context"
	"sync"
)

// Cache is a thread-safe local view of features, keyed by id. UIs apply
// mutations to it immediately and reconcile with the server afterwards.
type Cache struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{features: make(map[string]*Feature)}
}

// Load replaces the cache contents with the given features.
func (c *Cache) Load(features []*Feature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features = make(map[string]*Feature, len(features))
	for _, f := range features {
		cp := *f
		c.features[f.ID] = &cp
	}
}

// Get returns a copy of the cached feature, if present.
func (c *Cache) Get(id string) (*Feature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.features[id]
	if !ok {
		return nil, false
	}
	cp := *f
	return &cp, true
}

// Put inserts or replaces a feature.
func (c *Cache) Put(f *Feature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *f
	c.features[f.ID] = &cp
}

// Delete removes a feature from the cache.
func (c *Cache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.features, id)
}

// Len returns the number of cached features.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.features)
}

// subtreeIDs returns id and every cached descendant of it.
func (c *Cache) subtreeIDs(id string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := []string{id}
	member := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, f := range c.features {
			if f.ParentID != "" && member[f.ParentID] && !member[f.ID] {
				member[f.ID] = true
				ids = append(ids, f.ID)
				changed = true
			}
		}
	}
	return ids
}

// snapshot captures the current state of the given ids. Absent ids are
// recorded as nil so restore can re-delete them.
func (c *Cache) snapshot(ids []string) map[string]*Feature {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := make(map[string]*Feature, len(ids))
	for _, id := range ids {
		if f, ok := c.features[id]; ok {
			cp := *f
			snap[id] = &cp
		} else {
			snap[id] = nil
		}
	}
	return snap
}

// restore puts a snapshot back.
func (c *Cache) restore(snap map[string]*Feature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, f := range snap {
		if f == nil {
			delete(c.features, id)
		} else {
			cp := *f
			c.features[id] = &cp
		}
	}
}

// Mutation is an optimistic change: it captures the pre-state of the
// affected cache entries, applies the change locally, and confirms it with
// the server. If the server rejects the change, the captured pre-state is
// restored so the local view never drifts from what the server accepted.
type Mutation struct {
	cache  *Cache
	ids    []string
	apply  func(c *Cache)
	remote func(ctx context.Context) error
}

// Execute runs the mutation. The local change is visible before the server
// round-trip completes; on a server error the cache is rolled back and the
// error returned.
func (m *Mutation) Execute(ctx context.Context) error {
	snap := m.cache.snapshot(m.ids)
	m.apply(m.cache)

	if err := m.remote(ctx); err != nil {
		m.cache.restore(snap)
		return err
	}
	return nil
}

// OptimisticUpdateFeature builds a mutation that applies a partial update to
// the cached feature and confirms it with the server. On success the cache
// entry is replaced with the server's authoritative version.
func (c *Client) OptimisticUpdateFeature(cache *Cache, id string, update *FeatureUpdate) *Mutation {
	return &Mutation{
		cache: cache,
		ids:   []string{id},
		apply: func(cache *Cache) {
			f, ok := cache.Get(id)
			if !ok {
				return
			}
			applyUpdate(f, update)
			cache.Put(f)
		},
		remote: func(ctx context.Context) error {
			updated, err := c.UpdateFeature(ctx, id, update)
			if err != nil {
				return err
			}
			cache.Put(updated)
			return nil
		},
	}
}

// OptimisticDeleteFeature builds a mutation that removes the feature and its
// cached descendants locally and confirms the subtree delete with the server.
func (c *Client) OptimisticDeleteFeature(cache *Cache, id string) *Mutation {
	ids := cache.subtreeIDs(id)
	return &Mutation{
		cache: cache,
		ids:   ids,
		apply: func(cache *Cache) {
			for _, fid := range ids {
				cache.Delete(fid)
			}
		},
		remote: func(ctx context.Context) error {
			return c.DeleteFeature(ctx, id)
		},
	}
}

// applyUpdate overlays non-nil update fields onto a feature, mirroring the
// server's partial update semantics closely enough for the optimistic view.
func applyUpdate(f *Feature, update *FeatureUpdate) {
	if update.Title != nil {
		f.Title = *update.Title
	}
	if update.Description != nil {
		f.Description = *update.Description
	}
	if update.ParentID != nil {
		f.ParentID = *update.ParentID
	}
	if update.Images != nil {
		f.Images = *update.Images
	}
	if update.Order != nil {
		f.Order = *update.Order
	}
	if update.HasAccounting != nil {
		f.HasAccounting = *update.HasAccounting
		if !*update.HasAccounting {
			f.IsAccountingDone = false
		}
	}
	if update.IsAccountingDone != nil && f.HasAccounting {
		f.IsAccountingDone = *update.IsAccountingDone
	}
	if update.IsCompleted != nil {
		f.IsCompleted = *update.IsCompleted
	}
}
