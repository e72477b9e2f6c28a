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
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workspace_login_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workspace_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Resource operations by resource and operation, e.g. ("workspace", "create")
	ResourceOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_resource_operations_total",
			Help: "Total number of resource operations",
		},
		[]string{"resource", "operation"},
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Responses by status class: 2xx, 4xx, 5xx
	StatusClassCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_http_responses_total",
			Help: "Total number of HTTP responses by status class",
		},
		[]string{"class"},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	// Authorization gate rejections by rule
	AuthzDenialCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_authz_denials_total",
			Help: "Total number of requests rejected by the authorization gate",
		},
		[]string{"rule"},
	)

	InconsistentStateCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workspace_inconsistent_state_total",
			Help: "Workspaces persisted without their admin member",
		},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspace_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspace_db_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // query, count, insert, update, delete
	)

	AnalyticsDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspace_analytics_compute_duration_seconds",
			Help:    "Duration of month-over-month analytics computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"}, // workspace, project
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workspace_info",
			Help: "Information about the workspace service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(ResourceOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(StatusClassCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AuthzDenialCounter)
	prometheus.MustRegister(InconsistentStateCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(AnalyticsDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures a store operation: defer TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

// TrackAnalytics measures one analytics computation for a scope
func TrackAnalytics(scope string) func(time.Time) {
	return func(start time.Time) {
		AnalyticsDuration.With(prometheus.Labels{"scope": scope}).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			StatusClassCounter.WithLabelValues(statusClass(c.Response().Status)).Inc()

			return err
		}
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}

// NewActiveSessionsGauge reports the live session count, read from the session store
// on every scrape
func NewActiveSessionsGauge(count func() float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "workspace_active_sessions",
			Help: "Number of live sessions in the session store",
		},
		count,
	)
}

// RegisterActiveSessions registers the active sessions gauge with the default registry
func RegisterActiveSessions(count func() float64) error {
	return prometheus.Register(NewActiveSessionsGauge(count))
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAuthzDenial records a rejection by the authorization gate
func RecordAuthzDenial(rule string) {
	AuthzDenialCounter.With(prometheus.Labels{"rule": rule}).Inc()
}

// RecordOperation records a resource operation
func RecordOperation(resource, operation string) {
	ResourceOperationCounter.With(prometheus.Labels{"resource": resource, "operation": operation}).Inc()
}

func RecordInconsistentState() {
	InconsistentStateCounter.Inc()
}
