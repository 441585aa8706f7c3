package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store is an in-process read-through cache shared by the cart, wishlist,
// order and payment services. Lookups never fail a request: a miss or an
// expired entry just falls through to the database. Expired entries are
// dropped lazily on read.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration

	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// New builds an empty Store. Entries written through Set live for defaultTTL;
// a non-positive TTL keeps them until invalidated.
func New(defaultTTL time.Duration) *Store {
	return &Store{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
	}
}

// Instrument attaches hit/miss counters labelled by entity. Call before the
// store is shared across goroutines.
func (s *Store) Instrument(hits, misses *prometheus.CounterVec) {
	s.hits = hits
	s.misses = misses
}

// Get returns the live value under key. An expired entry counts as a miss
// and is removed.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok && e.expired(time.Now()) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.expired(time.Now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		ok = false
	}

	s.count(key, ok)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (s *Store) Set(key string, value interface{}) {
	s.SetTTL(key, value, s.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL. A non-positive ttl
// keeps the entry until it is deleted.
func (s *Store) SetTTL(key string, value interface{}, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Delete removes every given key. Missing keys are ignored, so invalidation
// after a write is safe to call unconditionally.
func (s *Store) Delete(keys ...string) {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
}

// Flush drops all entries.
func (s *Store) Flush() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Lookup returns the cached value under key when it holds a T.
func Lookup[T any](s *Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

func (s *Store) count(key string, hit bool) {
	if hit {
		if s.hits != nil {
			s.hits.WithLabelValues(entityFromKey(key)).Inc()
		}
		return
	}
	if s.misses != nil {
		s.misses.WithLabelValues(entityFromKey(key)).Inc()
	}
}

// entityFromKey maps "cart_user_<id>" to "cart", "order_ORD-X" to "order"
// and so on, so counter cardinality stays bounded.
func entityFromKey(key string) string {
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i]
	}
	return key
}
