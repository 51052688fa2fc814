package usecase

import (
	"context"

	drepo "VolPulse/internal/domain/repository"
	"VolPulse/internal/engine"
)

// Collector pulls raw frames from the feed and hands them to the engine.
type Collector struct {
	stream           drepo.FeedStream
	eng              *engine.Engine
	metrics          drepo.Metrics
	resetOnReconnect bool
}

// NewCollector creates a new Collector instance.
func NewCollector(stream drepo.FeedStream, eng *engine.Engine, metrics drepo.Metrics, resetOnReconnect bool) *Collector {
	return &Collector{stream: stream, eng: eng, metrics: metrics, resetOnReconnect: resetOnReconnect}
}

// IsConnected returns true if the feed stream is connected.
func (c *Collector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *Collector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	frames, errs := c.stream.Read(ctx)
	go c.consume(ctx, frames, errs)
	return nil
}

func (c *Collector) consume(ctx context.Context, frames <-chan []byte, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			if err != nil {
				c.metrics.RecordError("feed")
				for {
					if ctx.Err() != nil {
						return
					}
					if err := c.stream.Reconnect(ctx); err == nil {
						break
					}
				}
				if c.resetOnReconnect {
					c.eng.ClearSnapshots()
				}
				frames, errs = c.stream.Read(ctx)
			}
		case b := <-frames:
			if b == nil {
				continue
			}
			_ = c.eng.HandleMessage(b)
		}
	}
}

// Stop closes the feed stream.
func (c *Collector) Stop() error { return c.stream.Close() }
