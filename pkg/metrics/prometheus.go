package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	eventsIngested *prometheus.CounterVec
	alertsRecorded *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	trackedSymbols prometheus.Gauge
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpulse_events_ingested_total",
				Help: "Total number of valid feed events ingested",
			},
			[]string{"symbol"},
		),
		alertsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpulse_alerts_recorded_total",
				Help: "Total number of volume-spike alerts recorded",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		trackedSymbols: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "volpulse_tracked_symbols",
				Help: "Number of symbols currently held in the snapshot store",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEventIngested counts one accepted feed event.
func (r *Recorder) RecordEventIngested(symbol string) {
	r.eventsIngested.WithLabelValues(symbol).Inc()
}

// RecordAlert counts one recorded alert.
func (r *Recorder) RecordAlert(symbol string) {
	r.alertsRecorded.WithLabelValues(symbol).Inc()
}

// RecordError counts an error occurrence by kind.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTrackedSymbols records the snapshot store size.
func (r *Recorder) RecordTrackedSymbols(n int) {
	r.trackedSymbols.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
