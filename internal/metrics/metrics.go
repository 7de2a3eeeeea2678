package metrics

import (
	"regexp"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RecurrenceDates observes how many dates each booking expanded into.
	RecurrenceDates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agenda_recurrence_dates",
			Help:    "Dates generated per booking request",
			Buckets: []float64{1, 2, 4, 8, 12, 24, 52},
		},
	)

	// AppointmentInserts counts appointment rows by result (created, conflict, internal).
	AppointmentInserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_appointment_inserts_total",
			Help: "Appointment inserts by result",
		},
		[]string{"result"},
	)
)

var uuidPathSegment = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal, RecurrenceDates, AppointmentInserts)
}

// NormalizePath replaces uuid segments with {id} to keep label cardinality low.
func NormalizePath(path string) string {
	return uuidPathSegment.ReplaceAllString(path, "/{id}$1")
}

func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func ObserveRecurrence(n int) {
	RecurrenceDates.Observe(float64(n))
}

func IncAppointmentInsert(result string) {
	AppointmentInserts.WithLabelValues(result).Inc()
}
