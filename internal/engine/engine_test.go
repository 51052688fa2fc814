package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"VolPulse/internal/domain/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func spikeFrame(symbol string, volume, volumePercent float64) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"volume_alert","symbol":"%s","currentPrice":43000,"currentVolume":%f,"changes":{"price":{"percent":1.5},"volume":{"percent":%f}}}`,
		symbol, volume, volumePercent,
	))
}

func newTestEngine(clk *fakeClock, opts ...Option) *Engine {
	cfg := DefaultConfig()
	opts = append([]Option{WithClock(clk.Now)}, opts...)
	return New(cfg, opts...)
}

func TestEngineIgnoresNonAlertFrames(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage([]byte(`{"type":"connection","message":"hello"}`)); err != nil {
		t.Fatalf("connection frame: %v", err)
	}
	if err := e.HandleMessage([]byte(`{"type":"heartbeat"}`)); err != nil {
		t.Fatalf("unknown frame: %v", err)
	}
	if err := e.HandleMessage([]byte(`garbage`)); err != nil {
		t.Fatalf("undecodable frame: %v", err)
	}

	tracked, _, _, _ := e.Stats()
	if tracked != 0 {
		t.Fatalf("tracked = %d, nothing should be ingested", tracked)
	}
}

func TestEngineRejectsInvalidAlertPayload(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	err := e.HandleMessage([]byte(`{"type":"volume_alert","currentVolume":1}`))
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestEngineAlertCooldownScenario(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	var alerts []*models.AlertEvent
	e := newTestEngine(clk, WithAlertHandler(func(ev *models.AlertEvent) {
		alerts = append(alerts, ev)
	}))

	// 3x spike over the 2.5x default threshold
	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}

	// still cooling down
	clk.Advance(59 * time.Second)
	if err := e.HandleMessage(spikeFrame("BTCUSDT", 52000, 310)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d inside cooldown", len(alerts))
	}
	// the snapshot still updated
	if got := e.Table("", SortDesc); len(got) != 1 || got[0].CurrentVolume != 52000 {
		t.Fatalf("table not updated during cooldown: %+v", got)
	}

	// cooldown elapsed
	clk.Advance(time.Second + time.Millisecond)
	if err := e.HandleMessage(spikeFrame("BTCUSDT", 53000, 320)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d after cooldown, want 2", len(alerts))
	}
	if len(e.Alerts()) != 2 {
		t.Fatalf("history = %d, want 2", len(e.Alerts()))
	}
}

func TestEngineBelowThresholdUpdatesTableOnly(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage(spikeFrame("ETHUSDT", 50000, 200)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(e.Alerts()) != 0 {
		t.Fatalf("2x spike must not alert at 2.5x threshold")
	}
	if len(e.Table("", SortDesc)) != 1 {
		t.Fatalf("snapshot should still be tracked")
	}
}

func TestEngineMinVolumeGatesAlerting(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage(spikeFrame("DOGEUSDT", 500, 400)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(e.Alerts()) != 0 {
		t.Fatalf("volume under minimum must not be recorded")
	}
}

func TestEngineTimestampRewritten(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	raw := []byte(`{"type":"volume_alert","symbol":"BTCUSDT","currentVolume":50000,"timestamp":1234}`)
	if err := e.HandleMessage(raw); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	got := e.Table("", SortDesc)
	if got[0].Timestamp != clk.Now().UnixMilli() {
		t.Fatalf("timestamp = %d, want processing clock %d", got[0].Timestamp, clk.Now().UnixMilli())
	}
}

func TestEngineAlertsFilteredByLiveSettings(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(e.Alerts()) != 1 {
		t.Fatalf("expected one alert")
	}

	s := e.Settings()
	s.MinVolume = 60000
	if err := e.UpdateSettings(s); err != nil {
		t.Fatalf("update: %v", err)
	}

	// hidden, not deleted
	if len(e.Alerts()) != 0 {
		t.Fatalf("raised minimum should hide the alert")
	}
	if _, _, alerts, _ := statsOf(e); alerts != 1 {
		t.Fatalf("history entry should survive the settings change")
	}

	s.MinVolume = 10000
	if err := e.UpdateSettings(s); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(e.Alerts()) != 1 {
		t.Fatalf("lowered minimum should reveal the alert again")
	}
}

func statsOf(e *Engine) (tracked, visible, alerts int, lastUpdate int64) {
	return e.Stats()
}

func TestEngineClearHistoryResetsCooldown(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	e.ClearHistory()

	clk.Advance(time.Second)
	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(e.Alerts()) != 1 {
		t.Fatalf("cleared symbol must be immediately eligible")
	}
}

func TestEngineClearSnapshotsKeepsHistory(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	e.ClearSnapshots()

	if len(e.Table("", SortDesc)) != 0 {
		t.Fatalf("table should be empty")
	}
	if len(e.Alerts()) != 1 {
		t.Fatalf("history should survive a table clear")
	}

	// cooldown also survives
	clk.Advance(time.Second)
	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(e.Alerts()) != 1 {
		t.Fatalf("cooldown must survive a table clear")
	}
}

func TestEnginePruneHistoryBelowThreshold(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	clk.Advance(time.Minute)
	if err := e.HandleMessage(spikeFrame("ETHUSDT", 50000, 500)); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	s := e.Settings()
	s.AlertThresholdTimes = 4.0
	if err := e.UpdateSettings(s); err != nil {
		t.Fatalf("update: %v", err)
	}
	e.PruneHistoryBelowThreshold()

	alerts := e.Alerts()
	if len(alerts) != 1 || alerts[0].Symbol != "ETHUSDT" {
		t.Fatalf("unexpected survivors: %+v", alerts)
	}

	// pruned symbol lost its cooldown, surviving one kept it
	clk.Advance(time.Second)
	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 450)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(e.Alerts()) != 2 {
		t.Fatalf("pruned symbol should alert again immediately")
	}
}

func TestEngineUpdateSettingsRejectsNoDirection(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	s := e.Settings()
	s.ShowIncrease = false
	s.ShowDecrease = false
	if err := e.UpdateSettings(s); !errors.Is(err, ErrNoDirection) {
		t.Fatalf("expected ErrNoDirection, got %v", err)
	}
	if got := e.Settings(); !got.ShowIncrease || !got.ShowDecrease {
		t.Fatalf("rejected update must not change state: %+v", got)
	}
}

func TestEngineUpdateSettingsRejectsNegative(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	s := e.Settings()
	s.MinVolume = -1
	if err := e.UpdateSettings(s); err == nil {
		t.Fatalf("negative minVolume should be rejected")
	}
}

func TestEngineEnricherBackfill(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk, WithEnricher(func(s *models.Snapshot) {
		if s.FullName == "" {
			s.FullName = "Bitcoin"
		}
	}))

	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	got := e.Table("", SortDesc)
	if got[0].FullName != "Bitcoin" {
		t.Fatalf("fullName = %q, want enriched", got[0].FullName)
	}
}

func TestEngineStats(t *testing.T) {
	clk := newFakeClock(time.UnixMilli(1700000000000))
	e := newTestEngine(clk)

	if err := e.HandleMessage(spikeFrame("BTCUSDT", 50000, 300)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := e.HandleMessage(spikeFrame("DOGEUSDT", 500, 120)); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	tracked, visible, alerts, lastUpdate := e.Stats()
	if tracked != 2 {
		t.Fatalf("tracked = %d", tracked)
	}
	if visible != 1 {
		t.Fatalf("visible = %d, low-volume entry hidden by default filter", visible)
	}
	if alerts != 1 {
		t.Fatalf("alerts = %d", alerts)
	}
	if lastUpdate != clk.Now().UnixMilli() {
		t.Fatalf("lastUpdate = %d", lastUpdate)
	}
}
