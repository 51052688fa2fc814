package engine

import (
	"fmt"
	"testing"

	"VolPulse/internal/domain/models"
)

func alertEvent(symbol string, volumePercent float64, at int64) *models.AlertEvent {
	ev := &models.AlertEvent{AlertTime: at}
	ev.Symbol = symbol
	ev.Changes.Volume.Percent = volumePercent
	return ev
}

func TestHistoryNewestFirst(t *testing.T) {
	h := NewAlertHistory(100)
	h.Record(alertEvent("A", 300, 1))
	h.Record(alertEvent("B", 300, 2))
	h.Record(alertEvent("C", 300, 3))

	all := h.All()
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Symbol != "C" || all[2].Symbol != "A" {
		t.Fatalf("unexpected order: %s %s %s", all[0].Symbol, all[1].Symbol, all[2].Symbol)
	}
}

func TestHistoryCap(t *testing.T) {
	h := NewAlertHistory(100)
	for i := 0; i < 150; i++ {
		h.Record(alertEvent(fmt.Sprintf("S%d", i), 300, int64(i)))
	}

	all := h.All()
	if len(all) != 100 {
		t.Fatalf("len = %d, want 100", len(all))
	}
	if all[0].Symbol != "S149" {
		t.Fatalf("newest = %s", all[0].Symbol)
	}
	if all[99].Symbol != "S50" {
		t.Fatalf("oldest kept = %s, want S50", all[99].Symbol)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewAlertHistory(100)
	h.Record(alertEvent("A", 300, 1))
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("len = %d after clear", h.Len())
	}
}

func TestHistoryPruneBelow(t *testing.T) {
	h := NewAlertHistory(100)
	h.Record(alertEvent("LOW", 200, 1))  // 2.0x
	h.Record(alertEvent("EDGE", 300, 2)) // 3.0x
	h.Record(alertEvent("HIGH", 500, 3)) // 5.0x

	survivors := h.PruneBelow(3.0)
	if len(survivors) != 2 {
		t.Fatalf("survivors = %v", survivors)
	}
	if _, ok := survivors["LOW"]; ok {
		t.Fatalf("LOW should be pruned")
	}
	if _, ok := survivors["EDGE"]; !ok {
		t.Fatalf("entry exactly at threshold survives")
	}
	if h.Len() != 2 {
		t.Fatalf("len = %d after prune", h.Len())
	}
}
