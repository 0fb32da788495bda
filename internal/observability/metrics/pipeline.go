// Package metrics provides Prometheus collectors for producer/consumer runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tphakala/prodcon/internal/buffer"
)

// CacheStatsFunc returns cumulative analyzer cache hits and misses.
type CacheStatsFunc func() (hits, misses int64)

// PipelineMetrics contains Prometheus metrics for the bounded channel and
// the tasks that use it.
type PipelineMetrics struct {
	registry *prometheus.Registry

	// Channel metrics
	occupancy   prometheus.Gauge
	capacity    prometheus.Gauge
	waitSeconds *prometheus.HistogramVec

	// Task metrics
	transfers *prometheus.CounterVec

	// Run metrics
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewPipelineMetrics creates and registers pipeline metrics on registry.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.occupancy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: SubsystemBuffer,
		Name:      "occupied_slots",
		Help:      "Number of committed products waiting in the bounded channel",
	})
	m.capacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: SubsystemBuffer,
		Name:      "capacity_slots",
		Help:      "Capacity of the bounded channel",
	})
	m.waitSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemBuffer,
			Name:      "wait_seconds",
			Help:      "Time spent waiting for a slot semaphore",
			Buckets:   WaitBuckets,
		},
		[]string{LabelOperation},
	)
	m.transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemTask,
			Name:      "transfers_total",
			Help:      "Products moved through the channel, by role",
		},
		[]string{LabelRole},
	)
	m.runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Finished runs, by outcome",
		},
		[]string{LabelOutcome},
	)
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of finished runs",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	m.collectors = []prometheus.Collector{
		m.occupancy,
		m.capacity,
		m.waitSeconds,
		m.transfers,
		m.runs,
		m.runDuration,
	}
}

// Describe implements prometheus.Collector.
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// ObserveOccupancy records the channel fill level.
func (m *PipelineMetrics) ObserveOccupancy(occupied, capacity int) {
	m.occupancy.Set(float64(occupied))
	m.capacity.Set(float64(capacity))
}

// ObserveWait records how long a Put or Take waited for its semaphore.
func (m *PipelineMetrics) ObserveWait(op buffer.Op, d time.Duration) {
	m.waitSeconds.WithLabelValues(string(op)).Observe(d.Seconds())
}

// ObserveTransfer counts one completed transfer for role.
func (m *PipelineMetrics) ObserveTransfer(role string) {
	m.transfers.WithLabelValues(role).Inc()
}

// ObserveRun records a finished run.
func (m *PipelineMetrics) ObserveRun(outcome string, d time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())
}

// TrackAnalyzerCache exports analyzer cache counters read from stats at
// scrape time.
func (m *PipelineMetrics) TrackAnalyzerCache(stats CacheStatsFunc) error {
	hits := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: SubsystemAnalyzer,
		Name:      "cache_hits_total",
		Help:      "Analyzer cache hits",
	}, func() float64 {
		h, _ := stats()
		return float64(h)
	})
	misses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: SubsystemAnalyzer,
		Name:      "cache_misses_total",
		Help:      "Analyzer cache misses",
	}, func() float64 {
		_, mi := stats()
		return float64(mi)
	})
	if err := m.registry.Register(hits); err != nil {
		return err
	}
	return m.registry.Register(misses)
}
