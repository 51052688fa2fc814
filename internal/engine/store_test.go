package engine

import (
	"testing"
	"time"

	"VolPulse/internal/domain/models"
)

func TestStoreUpsertStampsClock(t *testing.T) {
	s := NewSnapshotStore(180*time.Second, 30*time.Second)
	now := time.UnixMilli(1700000000000)

	snap := &models.Snapshot{Symbol: "BTCUSDT", Timestamp: 1}
	s.Upsert(snap, now)

	got, ok := s.Get("BTCUSDT")
	if !ok {
		t.Fatalf("expected entry")
	}
	if got.Timestamp != now.UnixMilli() {
		t.Fatalf("timestamp = %d, want %d", got.Timestamp, now.UnixMilli())
	}
}

func TestStoreUpsertReplacesWhole(t *testing.T) {
	s := NewSnapshotStore(180*time.Second, 30*time.Second)
	now := time.UnixMilli(1700000000000)

	s.Upsert(&models.Snapshot{Symbol: "BTCUSDT", FullName: "Bitcoin", CurrentPrice: 100}, now)
	s.Upsert(&models.Snapshot{Symbol: "BTCUSDT", CurrentPrice: 200}, now.Add(time.Second))

	got, _ := s.Get("BTCUSDT")
	if got.CurrentPrice != 200 {
		t.Fatalf("price = %v", got.CurrentPrice)
	}
	if got.FullName != "" {
		t.Fatalf("expected no field merge, fullName = %q", got.FullName)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestStoreEvictExpiredBoundary(t *testing.T) {
	expiry := 180 * time.Second
	s := NewSnapshotStore(expiry, 30*time.Second)
	base := time.UnixMilli(1700000000000)

	s.Upsert(&models.Snapshot{Symbol: "OLD"}, base)
	s.Upsert(&models.Snapshot{Symbol: "EDGE"}, base.Add(time.Millisecond))
	s.Upsert(&models.Snapshot{Symbol: "FRESH"}, base.Add(time.Minute))

	// OLD sits exactly at the boundary (age == expiry) and survives;
	// only strictly older entries go.
	now := base.Add(expiry)
	if n := s.EvictExpired(now); n != 0 {
		t.Fatalf("evicted %d at exact boundary", n)
	}

	now = base.Add(expiry + time.Millisecond)
	// debounce would swallow this sweep; use a fresh store state
	s2 := NewSnapshotStore(expiry, 30*time.Second)
	s2.Upsert(&models.Snapshot{Symbol: "OLD"}, base)
	s2.Upsert(&models.Snapshot{Symbol: "FRESH"}, base.Add(time.Minute))
	if n := s2.EvictExpired(now); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if _, ok := s2.Get("OLD"); ok {
		t.Fatalf("OLD should be gone")
	}
	if _, ok := s2.Get("FRESH"); !ok {
		t.Fatalf("FRESH should remain")
	}
}

func TestStoreEvictDebounced(t *testing.T) {
	s := NewSnapshotStore(180*time.Second, 30*time.Second)
	base := time.UnixMilli(1700000000000)

	s.Upsert(&models.Snapshot{Symbol: "A"}, base)
	s.EvictExpired(base.Add(200 * time.Second)) // sweeps, evicts A

	s.Upsert(&models.Snapshot{Symbol: "B"}, base)
	// within sweepEvery of the last sweep: no-op even though B is stale
	if n := s.EvictExpired(base.Add(210 * time.Second)); n != 0 {
		t.Fatalf("debounced sweep evicted %d", n)
	}
	if _, ok := s.Get("B"); !ok {
		t.Fatalf("B should survive the debounced call")
	}

	if n := s.EvictExpired(base.Add(231 * time.Second)); n != 1 {
		t.Fatalf("expected eviction after debounce window, got %d", n)
	}
}

func TestStoreClearAll(t *testing.T) {
	s := NewSnapshotStore(180*time.Second, 30*time.Second)
	now := time.UnixMilli(1700000000000)
	s.Upsert(&models.Snapshot{Symbol: "A"}, now)
	s.Upsert(&models.Snapshot{Symbol: "B"}, now)

	s.ClearAll()
	if s.Len() != 0 {
		t.Fatalf("len = %d after clear", s.Len())
	}
}
