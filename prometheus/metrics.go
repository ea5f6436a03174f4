package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// OTP issuance counter
	OTPSentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_otp_sent_total",
			Help: "Total number of OTP issuance attempts",
		},
		[]string{"result"}, // "sent", "sms_failed", "throttled"
	)

	// OTP verification counter
	OTPVerifyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_otp_verifications_total",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"result"}, // "success", "invalid", "expired", "throttled", "user_not_found"
	)

	// Auth error counter
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	// Complaint lifecycle transitions
	ComplaintTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_complaint_transitions_total",
			Help: "Total number of complaint status transitions",
		},
		[]string{"from", "to"},
	)

	// Complaint operations
	ComplaintOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_complaint_operations_total",
			Help: "Total number of complaint operations",
		},
		[]string{"operation"}, // "create", "update", "close", "cancel"
	)

	// Legacy supervisor flag usage
	SupervisorFlagCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenancy_supervisor_flag_requests_total",
			Help: "Requests granted supervisor scope through the unauthenticated query flag",
		},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenancy_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenancy_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tenancy_info",
			Help: "Information about the tenancy service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(OTPSentCounter)
	prometheus.MustRegister(OTPVerifyCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(ComplaintTransitionCounter)
	prometheus.MustRegister(ComplaintOperationCounter)
	prometheus.MustRegister(SupervisorFlagCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures a database operation; call the returned func when it finishes
func TrackDBOperation(operation string) func() {
	startTime := time.Now()
	return func() {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   strconv.Itoa(c.Response().Status),
			}

			RequestDuration.With(labels).Observe(duration)
			HTTPRequestCounter.With(labels).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordOTPSent records the outcome of an OTP issuance
func RecordOTPSent(result string) {
	OTPSentCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordOTPVerification records the outcome of an OTP verification
func RecordOTPVerification(result string) {
	OTPVerifyCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordComplaintTransition records a status change
func RecordComplaintTransition(from, to string) {
	ComplaintTransitionCounter.With(prometheus.Labels{"from": from, "to": to}).Inc()
}

// RecordComplaintOperation records a complaint operation
func RecordComplaintOperation(operation string) {
	ComplaintOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
