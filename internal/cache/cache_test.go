package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreSetGet(t *testing.T) {
	s := New(time.Minute)
	s.Set("cart_user_u1", "payload")

	v, ok := s.Get("cart_user_u1")
	if !ok {
		t.Fatalf("expected hit")
	}
	if v.(string) != "payload" {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestStoreMiss(t *testing.T) {
	s := New(time.Minute)
	if _, ok := s.Get("order_ORD-MISSING"); ok {
		t.Fatalf("expected miss")
	}
}

func TestStoreExpiry(t *testing.T) {
	s := New(time.Minute)
	s.SetTTL("cart_user_u1", "stale", time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	if _, ok := s.Get("cart_user_u1"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	// The expired entry is dropped, not resurrected.
	if _, ok := s.Get("cart_user_u1"); ok {
		t.Fatalf("expected entry to stay gone")
	}
}

func TestStoreNoExpiryWhenTTLNonPositive(t *testing.T) {
	s := New(0)
	s.Set("payment_config_dummy", 42)

	time.Sleep(2 * time.Millisecond)

	if _, ok := s.Get("payment_config_dummy"); !ok {
		t.Fatalf("expected entry without TTL to persist")
	}
}

func TestStoreDeleteMany(t *testing.T) {
	s := New(time.Minute)
	s.Set(CartKey("u1"), 1)
	s.Set(UserOrdersKey("u1"), 2)
	s.Set(WishlistKey("u1"), 3)

	s.Delete(CartKey("u1"), UserOrdersKey("u1"), "never_set")

	if _, ok := s.Get(CartKey("u1")); ok {
		t.Fatalf("expected cart key deleted")
	}
	if _, ok := s.Get(UserOrdersKey("u1")); ok {
		t.Fatalf("expected orders key deleted")
	}
	if _, ok := s.Get(WishlistKey("u1")); !ok {
		t.Fatalf("expected wishlist key untouched")
	}
}

func TestStoreFlush(t *testing.T) {
	s := New(time.Minute)
	s.Set("a", 1)
	s.Set("b", 2)

	s.Flush()

	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected flush to drop entries")
	}
}

func TestLookupTypeMismatch(t *testing.T) {
	s := New(time.Minute)
	s.Set("order_ORD-1", "not an int")

	if _, ok := Lookup[int](s, "order_ORD-1"); ok {
		t.Fatalf("expected type mismatch to miss")
	}
	got, ok := Lookup[string](s, "order_ORD-1")
	if !ok || got != "not an int" {
		t.Fatalf("expected typed hit, got %q ok=%v", got, ok)
	}
}

func TestStoreInstrumentCounts(t *testing.T) {
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_hits"}, []string{"entity"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_misses"}, []string{"entity"})

	s := New(time.Minute)
	s.Instrument(hits, misses)

	s.Get(CartKey("u1"))
	s.Set(CartKey("u1"), 1)
	s.Get(CartKey("u1"))
	s.Get(CartKey("u1"))

	if got := testutil.ToFloat64(hits.WithLabelValues("cart")); got != 2 {
		t.Fatalf("expected 2 cart hits, got %v", got)
	}
	if got := testutil.ToFloat64(misses.WithLabelValues("cart")); got != 1 {
		t.Fatalf("expected 1 cart miss, got %v", got)
	}
}
