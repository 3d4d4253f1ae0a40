package providers

import (
	"pvd/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncCycles(outcome string)
	ObserveCycleDuration(duration time.Duration)
	AddClassified(class string, n int)
	IncAlertsDispatched(kind string)
	IncStorageErrors()
	ObserveRateLimitWait(duration time.Duration)
	SetVisitorsTotal(count int)
	SetMonitoring(active bool)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cyclesTotal      *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	classifiedTotal  *prometheus.CounterVec
	alertsDispatched *prometheus.CounterVec
	storageErrors    prometheus.Counter
	rateLimitWait    prometheus.Histogram
	visitorsTotal    prometheus.Gauge
	monitoringActive prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncCycles(outcome string) {
	m.cyclesTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveCycleDuration(duration time.Duration) {
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddClassified(class string, n int) {
	m.classifiedTotal.WithLabelValues(class).Add(float64(n))
}

func (m *MetricsProvider) IncAlertsDispatched(kind string) {
	m.alertsDispatched.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncStorageErrors() {
	m.storageErrors.Inc()
}

func (m *MetricsProvider) ObserveRateLimitWait(duration time.Duration) {
	m.rateLimitWait.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetVisitorsTotal(count int) {
	m.visitorsTotal.Set(float64(count))
}

func (m *MetricsProvider) SetMonitoring(active bool) {
	if active {
		m.monitoringActive.Set(1)
	} else {
		m.monitoringActive.Set(0)
	}
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pvd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pvd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pvd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pvd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		cyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pvd_monitor_cycles_total",
			Help: "Monitoring cycles by outcome (ok, rate_limited, transient, storage_error)",
		}, []string{"outcome"}),

		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pvd_monitor_cycle_duration_seconds",
			Help:    "Duration of one fetch-diff-persist cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		classifiedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pvd_entities_classified_total",
			Help: "Snapshot entities by diff class (new, returning, unchanged)",
		}, []string{"class"}),

		alertsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pvd_alerts_dispatched_total",
			Help: "Alerts handed to the dispatcher, by kind",
		}, []string{"kind"}),

		storageErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pvd_storage_errors_total",
			Help: "Storage errors surfaced by the visitor store",
		}),

		rateLimitWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pvd_rate_limit_wait_seconds",
			Help:    "Waits imposed by the snapshot source rate limiter",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		visitorsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pvd_visitors_total",
			Help: "Distinct entities in the visitor ledger",
		}),

		monitoringActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pvd_monitoring_active",
			Help: "1 while the monitoring loop is running",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncCycles(_ string)                               {}
func (n *noopMetrics) ObserveCycleDuration(_ time.Duration)             {}
func (n *noopMetrics) AddClassified(_ string, _ int)                    {}
func (n *noopMetrics) IncAlertsDispatched(_ string)                     {}
func (n *noopMetrics) IncStorageErrors()                                {}
func (n *noopMetrics) ObserveRateLimitWait(_ time.Duration)             {}
func (n *noopMetrics) SetVisitorsTotal(_ int)                           {}
func (n *noopMetrics) SetMonitoring(_ bool)                             {}
