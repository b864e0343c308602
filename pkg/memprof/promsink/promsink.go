// Package promsink turns memprof records into Prometheus series.
package promsink

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeongki/memprof/pkg/memprof"
)

// Sink observes each record into a call counter, a duration histogram and a
// heap-delta histogram, labelled by function and kind. Severity is ignored.
type Sink struct {
	calls     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	heapDelta *prometheus.HistogramVec
}

type config struct {
	namespace       string
	durationBuckets []float64
	deltaBuckets    []float64
}

type Option func(*config)

// WithNamespace overrides the metric name prefix (default "memprof").
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithDurationBuckets overrides the millisecond buckets of the duration histogram.
func WithDurationBuckets(b []float64) Option {
	return func(c *config) {
		if len(b) > 0 {
			c.durationBuckets = b
		}
	}
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, opts ...Option) (*Sink, error) {
	cfg := config{
		namespace:       "memprof",
		durationBuckets: prometheus.ExponentialBuckets(1, 2, 14),
		deltaBuckets:    prometheus.LinearBuckets(-8, 1, 17),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	labels := []string{"function", "kind"}
	s := &Sink{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "calls_total",
				Help:      "Successful instrumented calls",
			},
			labels,
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.namespace,
				Name:      "call_duration_milliseconds",
				Help:      "Wall-clock duration of instrumented calls in milliseconds",
				Buckets:   cfg.durationBuckets,
			},
			labels,
		),
		heapDelta: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.namespace,
				Name:      "heap_delta_megabytes",
				Help:      "Heap-used delta across instrumented calls in megabytes",
				Buckets:   cfg.deltaBuckets,
			},
			labels,
		),
	}

	cs := []prometheus.Collector{s.calls, s.duration, s.heapDelta}
	for i, c := range cs {
		if err := reg.Register(c); err != nil {
			// leave reg as it was so a later New can retry
			for _, done := range cs[:i] {
				reg.Unregister(done)
			}
			return nil, fmt.Errorf("register memprof collector: %w", err)
		}
	}
	return s, nil
}

func (s *Sink) Info(rec memprof.Record) { s.observe(rec) }
func (s *Sink) Warn(rec memprof.Record) { s.observe(rec) }

func (s *Sink) observe(rec memprof.Record) {
	kind := rec.Kind.String()
	s.calls.WithLabelValues(rec.Name, kind).Inc()
	s.duration.WithLabelValues(rec.Name, kind).Observe(float64(rec.DurationMs))
	s.heapDelta.WithLabelValues(rec.Name, kind).Observe(rec.DeltaMemoryMB)
}

var _ memprof.Sink = (*Sink)(nil)
