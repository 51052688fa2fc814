package usecase

import (
	"context"
	"fmt"
	"time"

	"VolPulse/internal/domain/models"
	drepo "VolPulse/internal/domain/repository"
	"VolPulse/pkg/logger"
)

// AlertProcessor routes recorded alerts to the configured sink.
type AlertProcessor struct {
	pub     drepo.AlertPublisher
	archive drepo.AlertArchive
	metrics drepo.Metrics
	sink    string
	log     *logger.Logger
}

// NewAlertProcessor creates a new AlertProcessor instance.
func NewAlertProcessor(
	pub drepo.AlertPublisher,
	archive drepo.AlertArchive,
	metrics drepo.Metrics,
	sink string,
	log *logger.Logger,
) *AlertProcessor {
	return &AlertProcessor{
		pub:     pub,
		archive: archive,
		metrics: metrics,
		sink:    sink,
		log:     log,
	}
}

// Process routes a single alert to the configured sink.
func (p *AlertProcessor) Process(ctx context.Context, ev *models.AlertEvent) error {
	if ev == nil {
		return fmt.Errorf("alert is nil")
	}

	start := time.Now()
	var err error

	switch p.sink {
	case "log":
		p.log.Info("volume alert",
			logger.String("symbol", ev.Symbol),
			logger.Float64("price", ev.CurrentPrice),
			logger.Float64("volume", ev.CurrentVolume),
			logger.Float64("volumeChange", ev.Changes.Volume.Percent),
			logger.Int64("alertTime", ev.AlertTime),
		)
	case "kafka":
		err = p.pub.Publish(ctx, ev)
	case "clickhouse":
		err = p.archive.Store(ctx, ev)
	default:
		err = fmt.Errorf("unknown sink: %s", p.sink)
	}

	if err != nil {
		p.metrics.RecordError("sink")
		return fmt.Errorf("process alert: %w", err)
	}

	p.metrics.RecordLatency("sink", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *AlertProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.archive != nil {
		_ = p.archive.Close()
	}
}
