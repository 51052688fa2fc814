package engine

import (
	"sync"

	"VolPulse/internal/domain/models"
)

// AlertHistory is a bounded, newest-first log of recorded alerts.
// Oldest entries beyond the cap are dropped silently; that is capacity
// policy, not an error.
type AlertHistory struct {
	mu      sync.RWMutex
	entries []*models.AlertEvent
	limit   int
}

func NewAlertHistory(limit int) *AlertHistory {
	if limit <= 0 {
		limit = 100
	}
	return &AlertHistory{limit: limit}
}

// Record prepends the event and truncates to the most recent limit
// entries.
func (h *AlertHistory) Record(ev *models.AlertEvent) {
	h.mu.Lock()
	h.entries = append([]*models.AlertEvent{ev}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	h.mu.Unlock()
}

// All returns the log newest-first.
func (h *AlertHistory) All() []*models.AlertEvent {
	h.mu.RLock()
	out := make([]*models.AlertEvent, len(h.entries))
	copy(out, h.entries)
	h.mu.RUnlock()
	return out
}

func (h *AlertHistory) Len() int {
	h.mu.RLock()
	n := len(h.entries)
	h.mu.RUnlock()
	return n
}

// Clear empties the log. The caller is responsible for also resetting
// the cooldown table so cleared symbols become eligible again.
func (h *AlertHistory) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}

// PruneBelow drops entries whose volume change no longer meets the
// threshold and returns the symbols that survived.
func (h *AlertHistory) PruneBelow(thresholdTimes float64) map[string]struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.entries[:0:0]
	survivors := make(map[string]struct{})
	for _, ev := range h.entries {
		if ev.Changes.Volume.Percent/100 >= thresholdTimes {
			kept = append(kept, ev)
			survivors[ev.Symbol] = struct{}{}
		}
	}
	h.entries = kept
	return survivors
}
