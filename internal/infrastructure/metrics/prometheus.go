package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Store metrics
	storeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of repository operations by entity, operation and result",
		},
		[]string{"entity", "operation", "result"},
	)

	storeSaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_save_duration_seconds",
			Help:    "Time spent rewriting an entity data file",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, 1},
		},
		[]string{"entity"},
	)

	storeRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_records",
			Help: "Number of records currently held per entity",
		},
		[]string{"entity"},
	)

	storeParseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_parse_errors_total",
			Help: "Malformed lines dropped while loading",
		},
		[]string{"entity"},
	)

	storeBackupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_backup_failures_total",
			Help: "Backups that failed before a save",
		},
		[]string{"entity"},
	)

	// Business metrics
	appointmentsBooked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appointments_booked_total",
			Help: "Total number of appointments booked",
		},
	)

	bookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_bookings_rejected_total",
			Help: "Booking attempts rejected by validation",
		},
		[]string{"reason"},
	)

	appointmentStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_status_changes_total",
			Help: "Total number of appointment status transitions",
		},
		[]string{"to_status"},
	)

	dispenseOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prescriptions_dispensed_total",
			Help: "Dispense attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := routeTemplate(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeTemplate uses the mux route pattern so IDs don't explode label cardinality.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// --- Store helpers ---

// RecordStoreOperation records one repository call
func RecordStoreOperation(entity, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(entity, operation, result).Inc()
}

// RecordSave records a file rewrite duration
func RecordSave(entity string, duration time.Duration) {
	storeSaveDuration.WithLabelValues(entity).Observe(duration.Seconds())
}

// RecordRecordCount sets the in-memory record count
func RecordRecordCount(entity string, count int) {
	storeRecords.WithLabelValues(entity).Set(float64(count))
}

// RecordParseError records a dropped malformed line
func RecordParseError(entity string) {
	storeParseErrors.WithLabelValues(entity).Inc()
}

// RecordBackupFailure records a swallowed backup error
func RecordBackupFailure(entity string) {
	storeBackupFailures.WithLabelValues(entity).Inc()
}

// --- Business helpers ---

// RecordAppointmentBooked records a successful booking
func RecordAppointmentBooked() {
	appointmentsBooked.Inc()
}

// RecordBookingRejected records a rejected booking attempt
func RecordBookingRejected(reason string) {
	bookingsRejected.WithLabelValues(reason).Inc()
}

// RecordAppointmentStatusChange records a status transition
func RecordAppointmentStatusChange(toStatus string) {
	appointmentStatusChanges.WithLabelValues(toStatus).Inc()
}

// RecordDispense records a dispense attempt outcome
func RecordDispense(outcome string) {
	dispenseOutcomes.WithLabelValues(outcome).Inc()
}
