package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agrosynth"

// Metrics holds the Prometheus collectors for the alert API.
// All methods are safe on a nil *Metrics so optional wiring stays terse.
type Metrics struct {
	AlertsCreated   prometheus.Counter
	AlertsDeleted   *prometheus.CounterVec   // labels: outcome={deleted,noop,error}
	Uploads         *prometheus.CounterVec   // labels: outcome={success,rejected,error}
	GeocodeRequests *prometheus.CounterVec   // labels: outcome={success,empty,error}
	GeocodeCache    *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeDuration prometheus.Histogram
	WSConnections   prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		AlertsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "Total alerts stored.",
		}),
		AlertsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_deleted_total",
			Help:      "Delete requests by outcome.",
		}, []string{"outcome"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_duration_seconds",
			Help:      "Reverse geocoding upstream request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Open live-feed websocket connections on this instance.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AlertsCreated,
		m.AlertsDeleted,
		m.Uploads,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeDuration,
		m.WSConnections,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build many instances.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) AlertCreated() {
	if m == nil {
		return
	}
	m.AlertsCreated.Inc()
}

func (m *Metrics) AlertDeleted(outcome string) {
	if m == nil {
		return
	}
	m.AlertsDeleted.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Geocode(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.GeocodeRequests.WithLabelValues(outcome).Inc()
	m.GeocodeDuration.Observe(took.Seconds())
}

func (m *Metrics) GeocodeCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.GeocodeCache.WithLabelValues(result).Inc()
}

func (m *Metrics) WSConnected(delta float64) {
	if m == nil {
		return
	}
	m.WSConnections.Add(delta)
}
