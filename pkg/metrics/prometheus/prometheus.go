package prometheus

import (
	"strconv"
	"time"

	"github.com/alsaadxx12/roda10-sub000/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	namespace string

	renders       *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
	renderRows    *prometheus.HistogramVec
	warnings      *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec

	storeOps     *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	circuitOpens *prometheus.CounterVec
	circuitState *prometheus.GaugeVec
}

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		namespace: namespace,
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of rendered documents per template kind",
			},
			[]string{"kind"},
		),
		renderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Document render latency",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 15), // 50µs to ~0.8s
			},
			[]string{"kind"},
		),
		renderRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_transactions",
				Help:      "Number of transaction lines per rendered document",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"kind"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "template_warnings_total",
				Help:      "Total number of lenient template syntax warnings per code",
			},
			[]string{"code"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "template_cache_lookups_total",
				Help:      "Parsed template cache lookups",
			},
			[]string{"hit"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of template store operations per backend",
			},
			[]string{"backend", "op"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Total number of failed template store operations per backend",
			},
			[]string{"backend", "op"},
		),
		storeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Template store operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
			[]string{"backend", "op"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Total number of circuit breaker opens per backend",
			},
			[]string{"backend"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state per backend (0=closed, 1=open, 2=half-open)",
			},
			[]string{"backend"},
		),
	}
}

// Register registers all metrics with the given Prometheus registerer.
func (pc *PrometheusCollector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.renders,
		pc.renderLatency,
		pc.renderRows,
		pc.warnings,
		pc.cacheLookups,
		pc.storeOps,
		pc.storeErrors,
		pc.storeLatency,
		pc.circuitOpens,
		pc.circuitState,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordRender records one rendered document.
func (pc *PrometheusCollector) RecordRender(kind string, duration time.Duration, transactions int) {
	pc.renders.WithLabelValues(kind).Inc()
	pc.renderLatency.WithLabelValues(kind).Observe(duration.Seconds())
	pc.renderRows.WithLabelValues(kind).Observe(float64(transactions))
}

// RecordWarnings records lenient syntax warnings of one code.
func (pc *PrometheusCollector) RecordWarnings(code string, count int) {
	if count <= 0 {
		return
	}
	pc.warnings.WithLabelValues(code).Add(float64(count))
}

// RecordCacheLookup records a parsed template cache lookup.
func (pc *PrometheusCollector) RecordCacheLookup(hit bool) {
	pc.cacheLookups.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

// RecordStoreOp records a template store operation.
func (pc *PrometheusCollector) RecordStoreOp(backend, op string, success bool, duration time.Duration) {
	pc.storeOps.WithLabelValues(backend, op).Inc()
	if !success {
		pc.storeErrors.WithLabelValues(backend, op).Inc()
	}
	pc.storeLatency.WithLabelValues(backend, op).Observe(duration.Seconds())
}

// RecordCircuitState records a circuit breaker state change.
func (pc *PrometheusCollector) RecordCircuitState(backend string, state metrics.CircuitState) {
	pc.circuitState.WithLabelValues(backend).Set(float64(state))
	if state == metrics.CircuitOpen {
		pc.circuitOpens.WithLabelValues(backend).Inc()
	}
}

var _ metrics.Collector = (*PrometheusCollector)(nil)
