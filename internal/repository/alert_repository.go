package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/domain/repository"
	pkgkafka "VolPulse/pkg/kafka"
)

// ClickHouseArchive implements AlertArchive for ClickHouse.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchive creates ClickHouse alert archive.
func NewClickHouseArchive(db *sql.DB, table string) repository.AlertArchive {
	return &ClickHouseArchive{db: db, table: table}
}

func (s *ClickHouseArchive) Init(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		alert_time      DateTime64(3),
		symbol          LowCardinality(String),
		base_asset      LowCardinality(String),
		price           Float64,
		volume          Float64,
		market_cap      Float64,
		price_change    Float64,
		volume_change   Float64,
		total_volume    Float64,
		window_start    DateTime64(3),
		window_end      DateTime64(3)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMMDD(alert_time)
	ORDER BY (symbol, alert_time)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init archive schema: %w", err)
	}
	return nil
}

func (s *ClickHouseArchive) Store(ctx context.Context, ev *models.AlertEvent) error {
	if ev == nil || ev.Symbol == "" {
		return fmt.Errorf("alert event is empty")
	}

	var totalVolume float64
	var windowStart, windowEnd time.Time
	if w := ev.TotalVolume; w != nil {
		totalVolume = w.Value
		windowStart = time.UnixMilli(w.StartTime)
		windowEnd = time.UnixMilli(w.EndTime)
	}

	q := fmt.Sprintf(`INSERT INTO %s
		(alert_time, symbol, base_asset, price, volume, market_cap, price_change, volume_change, total_volume, window_start, window_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.UnixMilli(ev.AlertTime),
		ev.Symbol,
		ev.BaseAsset,
		ev.CurrentPrice,
		ev.CurrentVolume,
		ev.MarketCap,
		ev.Changes.Price.Percent,
		ev.Changes.Volume.Percent,
		totalVolume,
		windowStart,
		windowEnd,
	)
	return err
}

func (s *ClickHouseArchive) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.AlertEvent, error) {
	q := fmt.Sprintf(`SELECT alert_time, symbol, base_asset, price, volume, market_cap, price_change, volume_change, total_volume, window_start, window_end
		FROM %s
		WHERE symbol = ? AND alert_time >= ? AND alert_time <= ?
		ORDER BY alert_time DESC
		LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.AlertEvent
	for rows.Next() {
		var ev models.AlertEvent
		var alertTime, windowStart, windowEnd time.Time
		var totalVolume float64
		if err := rows.Scan(
			&alertTime,
			&ev.Symbol,
			&ev.BaseAsset,
			&ev.CurrentPrice,
			&ev.CurrentVolume,
			&ev.MarketCap,
			&ev.Changes.Price.Percent,
			&ev.Changes.Volume.Percent,
			&totalVolume,
			&windowStart,
			&windowEnd,
		); err != nil {
			return nil, err
		}
		ev.AlertTime = alertTime.UnixMilli()
		ev.Timestamp = ev.AlertTime
		if totalVolume > 0 {
			ev.TotalVolume = &models.VolumeWindow{
				Value:     totalVolume,
				StartTime: windowStart.UnixMilli(),
				EndTime:   windowEnd.UnixMilli(),
			}
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func (s *ClickHouseArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseArchive) Close() error {
	return nil // pool managed by pkg client
}

// KafkaAlertPublisher implements AlertPublisher for Kafka. Messages are
// keyed by symbol so per-symbol ordering survives partitioning.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates Kafka alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, ev *models.AlertEvent) error {
	if ev == nil || ev.Symbol == "" {
		return fmt.Errorf("alert event is empty")
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
