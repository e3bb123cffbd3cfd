package hostfuncs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports syscall counters and latencies to Prometheus.
type MetricsObserver struct {
	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
	// HeapLive is the live byte count of the simulated heap, set by the
	// executor after each run.
	HeapLive prometheus.Gauge
	// Runs counts finished jobs by outcome ("ok", "failed", "faulted").
	Runs *prometheus.CounterVec
}

// NewMetricsObserver creates the collectors and registers them with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	m := &MetricsObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magnolia",
			Name:      "syscalls_total",
			Help:      "Host calls made by jobs, by syscall.",
		}, []string{"syscall"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magnolia",
			Name:      "syscall_failures_total",
			Help:      "Failed host calls, by syscall and errno.",
		}, []string{"syscall", "errno"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "magnolia",
			Name:      "syscall_duration_seconds",
			Help:      "Host call latency.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"syscall"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magnolia",
			Name:      "syscall_bytes_total",
			Help:      "Bytes moved by read and write or requested from the heap.",
		}, []string{"syscall"}),
		HeapLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "magnolia",
			Name:      "heap_live_bytes",
			Help:      "Bytes still allocated on the simulated heap after the last run.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magnolia",
			Name:      "job_runs_total",
			Help:      "Finished job runs, by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.calls, m.failures, m.duration, m.bytes, m.HeapLive, m.Runs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements Observer.
func (m *MetricsObserver) Observe(c Call) {
	m.calls.WithLabelValues(c.Name).Inc()
	m.duration.WithLabelValues(c.Name).Observe(c.Duration.Seconds())
	if c.Bytes > 0 {
		m.bytes.WithLabelValues(c.Name).Add(float64(c.Bytes))
	}
	if c.Failed {
		m.failures.WithLabelValues(c.Name, strconv.Itoa(int(c.Errno))).Inc()
	}
}
