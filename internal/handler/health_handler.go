package handler

import (
	"net/http"

	"workspace-service/prometheus"

	"github.com/labstack/echo/v4"
)

// HealthCheck handles the health check endpoint
func HealthCheck(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"service": service,
		})
	}
}

// MetricsHandler exposes the Prometheus registry
func MetricsHandler() echo.HandlerFunc {
	return echo.WrapHandler(prometheus.GetPrometheusHandler())
}
