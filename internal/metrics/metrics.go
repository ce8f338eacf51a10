package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	// Business metrics
	LeadSearches   prometheus.Counter
	LeadExports    *prometheus.CounterVec
	LeadsTotal     prometheus.Gauge
	LeadsArchived  prometheus.Gauge
	ImageUploads   *prometheus.CounterVec
	ActivitiesSent *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
}

// New registers all metrics with reg. Pass prometheus.NewRegistry() in tests
// to avoid duplicate registration against the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests being served",
		}),

		LeadSearches: factory.NewCounter(prometheus.CounterOpts{
			Name: "lead_searches_total",
			Help: "Total number of lead searches performed",
		}),
		LeadExports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_exports_total",
				Help: "Total number of lead exports produced",
			},
			[]string{"format"}, // csv, xlsx
		),
		LeadsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leads_total",
			Help: "Number of leads stored, refreshed periodically",
		}),
		LeadsArchived: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leads_archived",
			Help: "Number of archived leads, refreshed periodically",
		}),
		ImageUploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "image_uploads_total",
				Help: "Total number of image uploads to object storage",
			},
			[]string{"kind", "status"}, // lead|note, success|failed
		),
		ActivitiesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activities_total",
				Help: "Lead activities by delivery outcome",
			},
			[]string{"result"}, // delivered, failed, dropped
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"collection", "operation"},
		),
	}
}

// NewNop returns metrics registered against a throwaway registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// RecordLeadSearch increments the lead search counter
func (m *Metrics) RecordLeadSearch() {
	m.LeadSearches.Inc()
}

// RecordExport increments the export counter for format
func (m *Metrics) RecordExport(format string) {
	m.LeadExports.WithLabelValues(format).Inc()
}

// RecordImageUpload counts an upload attempt of the given kind
func (m *Metrics) RecordImageUpload(kind string, success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.ImageUploads.WithLabelValues(kind, status).Inc()
}

// RecordActivity counts an activity outcome
func (m *Metrics) RecordActivity(result string) {
	m.ActivitiesSent.WithLabelValues(result).Inc()
}

// RecordDBQuery records database query duration
func (m *Metrics) RecordDBQuery(collection, operation string, duration time.Duration) {
	m.DBQueryDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// SetLeadCounts updates the lead gauges
func (m *Metrics) SetLeadCounts(total, archived int64) {
	m.LeadsTotal.Set(float64(total))
	m.LeadsArchived.Set(float64(archived))
}

// RecordHTTPRequest records a served request. path is the route pattern, not
// the raw URL, to bound label cardinality.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
