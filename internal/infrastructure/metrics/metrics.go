package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	IntakeSubmissions     *prometheus.CounterVec
	ChildInsertFailures   *prometheus.CounterVec
	ExpedienteUploads     *prometheus.CounterVec
	StorageRemoveFailures prometheus.Counter
	HTTPRequestDuration   *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IntakeSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crediadmin_intake_submissions_total",
			Help: "Client intake submissions by outcome",
		}, []string{"outcome"}),
		ChildInsertFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crediadmin_intake_child_insert_failures_total",
			Help: "Failed best-effort sub-record inserts by collection",
		}, []string{"coleccion"}),
		ExpedienteUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crediadmin_expediente_uploads_total",
			Help: "Client file uploads by outcome",
		}, []string{"outcome"}),
		StorageRemoveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "crediadmin_storage_remove_failures_total",
			Help: "Blob removals that failed after the metadata row was deleted",
		}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crediadmin_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IntakeOutcome counts one intake submission.
func (m *Metrics) IntakeOutcome(outcome string) {
	m.IntakeSubmissions.WithLabelValues(outcome).Inc()
}

// ChildInsertFailed counts one failed sub-record batch.
func (m *Metrics) ChildInsertFailed(coleccion string) {
	m.ChildInsertFailures.WithLabelValues(coleccion).Inc()
}

func (m *Metrics) UploadOutcome(outcome string) {
	m.ExpedienteUploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StorageRemoveFailed() {
	m.StorageRemoveFailures.Inc()
}

// ObserveHTTP records one served request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
