package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ripperdoc/internal/core"
	"ripperdoc/pkg/domain"
)

const namespace = "ripperdoc"

// Metrics records service operations and installation outcomes in its own
// Prometheus registry.
type Metrics struct {
	registry      *prometheus.Registry
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	installs      *prometheus.CounterVec
	complications prometheus.Histogram
}

var (
	_ core.MetricsRecorder = (*Metrics)(nil)
	_ core.InstallRecorder = (*Metrics)(nil)
)

// NewMetrics registers the ripperdoc collectors plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "success"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installations_total",
			Help:      "Committed installations by quality.",
		}, []string{"quality"}),
		complications: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "installation_complications",
			Help:      "Complications triggered per committed installation.",
			Buckets:   []float64{0, 1, 2, 3, 5},
		}),
	}
	m.registry.MustRegister(
		m.operations, m.duration, m.installs, m.complications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe implements core.MetricsRecorder.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	m.operations.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveInstall implements core.InstallRecorder.
func (m *Metrics) ObserveInstall(quality domain.Quality, complications int) {
	m.installs.WithLabelValues(string(quality)).Inc()
	m.complications.Observe(float64(complications))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
