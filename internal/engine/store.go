package engine

import (
	"sync"
	"time"

	"VolPulse/internal/domain/models"
)

// SnapshotStore keeps the latest snapshot per symbol. Entries are
// replaced whole on upsert; readers never see a half-updated snapshot
// because replacement is a single pointer assignment under the lock.
type SnapshotStore struct {
	mu         sync.RWMutex
	entries    map[string]*models.Snapshot
	expiry     time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
}

func NewSnapshotStore(expiry, sweepEvery time.Duration) *SnapshotStore {
	return &SnapshotStore{
		entries:    make(map[string]*models.Snapshot),
		expiry:     expiry,
		sweepEvery: sweepEvery,
	}
}

// Upsert stamps the snapshot with the processing clock and replaces any
// prior entry for the symbol. No field-level merge with the previous
// snapshot ever happens.
func (s *SnapshotStore) Upsert(snap *models.Snapshot, now time.Time) {
	snap.Timestamp = now.UnixMilli()
	s.mu.Lock()
	s.entries[snap.Symbol] = snap
	s.mu.Unlock()
}

func (s *SnapshotStore) Get(symbol string) (*models.Snapshot, bool) {
	s.mu.RLock()
	snap, ok := s.entries[symbol]
	s.mu.RUnlock()
	return snap, ok
}

// EvictExpired removes entries older than the expiry window. The sweep
// is debounced: repeated calls within sweepEvery are no-ops, so it is
// safe to call after every ingest as well as from a timer. Returns the
// number of entries removed.
func (s *SnapshotStore) EvictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) < s.sweepEvery {
		return 0
	}
	s.lastSweep = now

	removed := 0
	cutoff := now.UnixMilli() - s.expiry.Milliseconds()
	for sym, snap := range s.entries {
		if snap.Timestamp < cutoff {
			delete(s.entries, sym)
			removed++
		}
	}
	return removed
}

// ClearAll empties the store unconditionally.
func (s *SnapshotStore) ClearAll() {
	s.mu.Lock()
	s.entries = make(map[string]*models.Snapshot)
	s.mu.Unlock()
}

// Entries returns the current snapshots in unspecified order. Ordering
// is the projection's job.
func (s *SnapshotStore) Entries() []*models.Snapshot {
	s.mu.RLock()
	out := make([]*models.Snapshot, 0, len(s.entries))
	for _, snap := range s.entries {
		out = append(out, snap)
	}
	s.mu.RUnlock()
	return out
}

func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return n
}
