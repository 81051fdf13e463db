// Package snapshot keeps per-owner record snapshots warm and fans out
// change notifications to live subscribers. Writes go through the service
// layer, which invalidates here; readers get the cached snapshot or a fresh
// load on miss.
package snapshot

import (
	"context"
	"sync"
	"time"

	"teto/internal/cache"
	"teto/internal/store"
)

const (
	cacheSize = 256
	cacheTTL  = 30 * time.Second
)

type Hub struct {
	store store.Store
	cache *cache.LRUCache[store.Snapshot]

	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{} // ownerID -> subscribers
}

func NewHub(s store.Store) *Hub {
	return &Hub{
		store: s,
		cache: cache.NewLRUCache[store.Snapshot](cacheSize, cacheTTL),
		subs:  make(map[string]map[chan struct{}]struct{}),
	}
}

// Snapshot returns the owner's full record state, from cache when warm.
func (h *Hub) Snapshot(ctx context.Context, ownerID string) (store.Snapshot, error) {
	if snap, ok := h.cache.Get(ownerID); ok {
		return snap, nil
	}
	snap, err := store.Load(ctx, h.store, ownerID)
	if err != nil {
		return store.Snapshot{}, err
	}
	h.cache.Set(ownerID, snap)
	return snap, nil
}

// Invalidate drops the owner's cached snapshot and wakes every subscriber.
// Called after every successful write.
func (h *Hub) Invalidate(ownerID string) {
	h.cache.Delete(ownerID)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ownerID] {
		select {
		case ch <- struct{}{}:
		default: // subscriber already has a pending wake
		}
	}
}

// Subscribe registers for change notifications on the owner's records. The
// returned channel receives one wake per invalidation burst; cancel must be
// called when done.
func (h *Hub) Subscribe(ownerID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[chan struct{}]struct{})
	}
	h.subs[ownerID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[ownerID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, ownerID)
			}
		}
	}
	return ch, cancel
}
