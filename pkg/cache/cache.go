// Package cache holds the in-process read-path caches: a generic keyed tier
// for arbitrary computed responses and a hot tier of precomputed, pre-sorted
// product lists keyed by (sort, country). One Service is built per server
// instance and injected; nothing here is global.
package cache

import (
	"time"

	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/puzpuzpuz/xsync/v3"
)

// Service bundles the two cache tiers behind one injectable object.
type Service struct {
	Generic *Store
	Hot     *HotStore
}

func NewService(hotTTL time.Duration) *Service {
	return &Service{
		Generic: NewStore(),
		Hot:     NewHotStore(hotTTL),
	}
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Store is the generic TTL tier. Expired entries are evicted lazily on the
// next lookup; there is no background sweep.
type Store struct {
	entries *xsync.MapOf[string, entry]
	now     func() time.Time
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock builds a Store with an injected clock, for tests.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		entries: xsync.NewMapOf[string, entry](),
		now:     now,
	}
}

// Get returns the cached value for key, deleting it first if it has expired.
func (s *Store) Get(key string) (interface{}, bool) {
	e, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	if !e.expiresAt.After(s.now()) {
		s.entries.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl, overwriting any previous entry.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.entries.Store(key, entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	})
}

type hotEntry struct {
	rows        []model.CatalogProduct
	refreshedAt time.Time
}

// HotStore is the precomputed tier: one bounded, pre-sorted product list per
// (sort, country). Entries older than the TTL window read as absent so the
// caller falls back to the store; they are never served stale. Writers install
// a fresh copy of the rows, so readers can never observe a partially written
// entry.
type HotStore struct {
	entries *xsync.MapOf[string, hotEntry]
	ttl     time.Duration
	now     func() time.Time
}

func NewHotStore(ttl time.Duration) *HotStore {
	return NewHotStoreWithClock(ttl, time.Now)
}

// NewHotStoreWithClock builds a HotStore with an injected clock, for tests.
func NewHotStoreWithClock(ttl time.Duration, now func() time.Time) *HotStore {
	return &HotStore{
		entries: xsync.NewMapOf[string, hotEntry](),
		ttl:     ttl,
		now:     now,
	}
}

// HotKey builds the hot-tier key; an empty country means the ALL pseudo-country.
func HotKey(sort, country string) string {
	if country == "" {
		country = "ALL"
	}
	return sort + ":" + country
}

// Get returns the precomputed list for (sort, country) if it is still within
// its TTL window. The returned slice must be treated as read-only.
func (h *HotStore) Get(sort, country string) ([]model.CatalogProduct, bool) {
	e, ok := h.entries.Load(HotKey(sort, country))
	if !ok {
		return nil, false
	}
	if h.now().Sub(e.refreshedAt) > h.ttl {
		return nil, false
	}
	return e.rows, true
}

// Set overwrites the entry for (sort, country) with a copy of rows.
func (h *HotStore) Set(sort, country string, rows []model.CatalogProduct) {
	snapshot := make([]model.CatalogProduct, len(rows))
	copy(snapshot, rows)
	h.entries.Store(HotKey(sort, country), hotEntry{
		rows:        snapshot,
		refreshedAt: h.now(),
	})
}
