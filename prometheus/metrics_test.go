package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusOK))
	assert.Equal(t, "3xx", statusClass(http.StatusFound))
	assert.Equal(t, "4xx", statusClass(http.StatusNotFound))
	assert.Equal(t, "5xx", statusClass(http.StatusServiceUnavailable))
}

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestCounter.WithLabelValues("/ping", http.MethodGet, "418"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	after := testutil.ToFloat64(HTTPRequestCounter.WithLabelValues("/ping", http.MethodGet, "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordAuthzDenial(t *testing.T) {
	before := testutil.ToFloat64(AuthzDenialCounter.WithLabelValues("test_rule"))
	RecordAuthzDenial("test_rule")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthzDenialCounter.WithLabelValues("test_rule")))
}

func TestActiveSessionsGaugeReadsOnScrape(t *testing.T) {
	live := 3.0
	gauge := NewActiveSessionsGauge(func() float64 { return live })
	assert.Equal(t, 3.0, testutil.ToFloat64(gauge))

	live = 1
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge))
}
