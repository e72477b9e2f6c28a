package handler

import (
	"workspace-service/internal/middleware"
	"workspace-service/internal/service"
	"workspace-service/internal/telemetry"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// NewServer builds the echo instance with the middleware chain and every route
func NewServer(svc *service.Service, log *zap.Logger, serviceName string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	// Order matters: the logger renders errors, so everything outside it sees the final status
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(telemetry.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware(log))

	e.GET("/health", HealthCheck(serviceName))
	e.GET("/metrics", MetricsHandler())

	New(svc).Routes(e, middleware.AuthMiddleware(svc.Auth))
	return e
}
