package repository

import (
	"context"
	"time"

	"VolPulse/internal/domain/models"
)

// FeedStream is the upstream volume-alert WebSocket feed. Read hands raw
// frames to the consumer; decoding and validation happen downstream.
type FeedStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan []byte, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// AlertPublisher fans recorded alerts out to a message broker.
type AlertPublisher interface {
	Publish(ctx context.Context, ev *models.AlertEvent) error
	Close() error
}

// AlertArchive persists recorded alerts for ranged history queries.
type AlertArchive interface {
	Init(ctx context.Context) error // ensure tables
	Store(ctx context.Context, ev *models.AlertEvent) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.AlertEvent, error)
	Health(ctx context.Context) error
	Close() error
}

// CoinInfo resolves display metadata for a symbol.
type CoinInfo interface {
	Lookup(ctx context.Context, symbol string) (*models.CoinMeta, error)
}

type Metrics interface {
	RecordEventIngested(symbol string)
	RecordAlert(symbol string)
	RecordError(kind string)
	RecordTrackedSymbols(n int)
	RecordLatency(op string, seconds float64)
}
