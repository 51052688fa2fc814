package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/domain/repository"
	"VolPulse/pkg/logger"
)

// Feed message discriminators. Connection handshakes belong to the
// transport; anything unrecognized is dropped without error.
const (
	msgTypeConnection  = "connection"
	msgTypeVolumeAlert = "volume_alert"
)

// Config fixes the engine's windows at construction. The Settings part
// stays tunable afterwards through UpdateSettings.
type Config struct {
	Settings      Settings
	Cooldown      time.Duration // min gap between alerts per symbol
	Expiry        time.Duration // snapshot staleness window
	SweepInterval time.Duration // eviction debounce and timer period
	HistoryLimit  int
}

func DefaultConfig() Config {
	return Config{
		Settings:      DefaultSettings(),
		Cooldown:      60 * time.Second,
		Expiry:        180 * time.Second,
		SweepInterval: 30 * time.Second,
		HistoryLimit:  100,
	}
}

// Engine is the streaming aggregation and alerting core. It exclusively
// owns the snapshot store, the alert history, and the cooldown table;
// all mutation goes through its entry points. Ingestion is driven from
// a single caller goroutine, reads may happen concurrently.
type Engine struct {
	store      *SnapshotStore
	history    *AlertHistory
	classifier *Classifier

	mu       sync.RWMutex
	settings Settings

	cooldown time.Duration
	sweep    time.Duration

	log     *logger.Logger
	metrics repository.Metrics
	now     func() time.Time

	onAlert func(*models.AlertEvent)
	enrich  func(*models.Snapshot)

	lastUpdate atomic.Int64 // epoch ms of the last accepted event
}

type Option func(*Engine)

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m repository.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithAlertHandler observes every recorded alert, called synchronously
// on the ingestion path after the history append.
func WithAlertHandler(fn func(*models.AlertEvent)) Option {
	return func(e *Engine) { e.onAlert = fn }
}

// WithEnricher backfills display metadata on snapshots whose fullName
// or logoUrl the feed omitted.
func WithEnricher(fn func(*models.Snapshot)) Option {
	return func(e *Engine) { e.enrich = fn }
}

// WithClock overrides the processing clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(cfg Config, opts ...Option) *Engine {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 60 * time.Second
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 180 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 30 * time.Second
	}
	e := &Engine{
		store:      NewSnapshotStore(cfg.Expiry, cfg.SweepInterval),
		history:    NewAlertHistory(cfg.HistoryLimit),
		classifier: NewClassifier(),
		settings:   cfg.Settings,
		cooldown:   cfg.Cooldown,
		sweep:      cfg.SweepInterval,
		log:        logger.Nop(),
		metrics:    noopMetrics{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type envelope struct {
	Type string `json:"type"`
}

// HandleMessage dispatches one raw feed frame. Undecodable frames and
// unknown discriminators are dropped: that is feed noise, not an engine
// error. Returns ErrInvalidEvent only for volume_alert payloads that
// fail structural validation, so callers can count them if they care.
func (e *Engine) HandleMessage(raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		e.metrics.RecordError("undecodable_frame")
		return nil
	}
	switch env.Type {
	case msgTypeConnection:
		return nil
	case msgTypeVolumeAlert:
		return e.ingest(raw)
	default:
		e.metrics.RecordError("unknown_frame_type")
		return nil
	}
}

// ingest runs the full pipeline for one update: normalize, classify,
// record, upsert, opportunistic eviction.
func (e *Engine) ingest(raw []byte) error {
	start := e.now()

	snap, err := Normalize(raw, start)
	if err != nil {
		e.metrics.RecordError("invalid_event")
		return err
	}
	if e.enrich != nil && (snap.FullName == "" || snap.LogoURL == "") {
		e.enrich(snap)
	}

	e.mu.RLock()
	threshold := e.settings.AlertThresholdTimes
	minVolume := e.settings.MinVolume
	e.mu.RUnlock()

	// Classification consults prior cooldown state before the store is
	// touched; min volume gates alert recording, not just display.
	if e.classifier.ShouldAlert(snap.Symbol, snap.Changes.Volume.Percent, snap.CurrentVolume, start, threshold, minVolume, e.cooldown) {
		e.classifier.Mark(snap.Symbol, start)
		ev := &models.AlertEvent{Snapshot: *snap, AlertTime: start.UnixMilli()}
		e.history.Record(ev)
		e.metrics.RecordAlert(snap.Symbol)
		e.log.Info("volume spike recorded",
			logger.String("symbol", snap.Symbol),
			logger.Float64("times", VolumeChangeTimes(snap)),
			logger.Float64("volume", snap.CurrentVolume),
		)
		if e.onAlert != nil {
			e.onAlert(ev)
		}
	}

	e.store.Upsert(snap, start)
	e.store.EvictExpired(start)
	e.lastUpdate.Store(start.UnixMilli())

	e.metrics.RecordEventIngested(snap.Symbol)
	e.metrics.RecordTrackedSymbols(e.store.Len())
	e.metrics.RecordLatency("ingest", e.now().Sub(start).Seconds())
	return nil
}

// Run drives the periodic eviction sweep until ctx is done. The store's
// debounce guard makes overlap with opportunistic sweeps harmless.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := e.store.EvictExpired(e.now()); n > 0 {
				e.log.Debug("evicted stale snapshots", logger.Int("count", n))
				e.metrics.RecordTrackedSymbols(e.store.Len())
			}
		}
	}
}

// Table returns the filtered, sorted live view. Filters come from the
// current settings; recomputed on every call.
func (e *Engine) Table(key SortKey, dir SortDirection) []*models.Snapshot {
	e.mu.RLock()
	f := e.settings.filters()
	e.mu.RUnlock()
	return Project(e.store.Entries(), key, dir, f)
}

// Alerts returns the history filtered by the live min-volume and
// threshold, newest-first, the same way the display filters it.
func (e *Engine) Alerts() []*models.AlertEvent {
	e.mu.RLock()
	minVolume := e.settings.MinVolume
	threshold := e.settings.AlertThresholdTimes
	e.mu.RUnlock()

	all := e.history.All()
	out := make([]*models.AlertEvent, 0, len(all))
	for _, ev := range all {
		if ev.CurrentVolume < minVolume {
			continue
		}
		if ev.Changes.Volume.Percent/100 < threshold {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// ClearSnapshots empties the live table (user-triggered or on a
// reconnect reset). Alert history and cooldowns are untouched.
func (e *Engine) ClearSnapshots() {
	e.store.ClearAll()
	e.metrics.RecordTrackedSymbols(0)
}

// ClearHistory empties the alert log and resets the cooldown table, so
// a symbol that alerted before the clear is immediately eligible again.
func (e *Engine) ClearHistory() {
	e.history.Clear()
	e.classifier.Reset()
}

// PruneHistoryBelowThreshold drops history entries under the current
// threshold and retains cooldowns only for surviving symbols.
func (e *Engine) PruneHistoryBelowThreshold() {
	e.mu.RLock()
	threshold := e.settings.AlertThresholdTimes
	e.mu.RUnlock()
	e.classifier.Retain(e.history.PruneBelow(threshold))
}

func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings swaps the live settings. An update disabling both
// direction filters is rejected and the prior state kept.
func (e *Engine) UpdateSettings(s Settings) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.MinVolume < 0 || s.AlertThresholdTimes < 0 {
		return errors.New("minVolume and alertThresholdTimes must be non-negative")
	}
	e.mu.Lock()
	e.settings = s
	e.mu.Unlock()
	return nil
}

// Stats reports table sizes and the last accepted-event time (epoch ms,
// zero when nothing arrived yet).
func (e *Engine) Stats() (tracked, visible, alerts int, lastUpdate int64) {
	e.mu.RLock()
	f := e.settings.filters()
	e.mu.RUnlock()

	entries := e.store.Entries()
	for _, s := range entries {
		if f.Match(s) {
			visible++
		}
	}
	return len(entries), visible, e.history.Len(), e.lastUpdate.Load()
}

type noopMetrics struct{}

func (noopMetrics) RecordEventIngested(string)  {}
func (noopMetrics) RecordAlert(string)          {}
func (noopMetrics) RecordError(string)          {}
func (noopMetrics) RecordTrackedSymbols(int)    {}
func (noopMetrics) RecordLatency(string, float64) {}
