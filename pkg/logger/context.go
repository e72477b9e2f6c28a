package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const (
	// Key is the echo context key holding the request logger
	Key                     = "logger"
	ctxLoggerKey contextKey = "logger"
)

// FromContext retrieves the request logger from the Echo context
func FromContext(c echo.Context) *zap.Logger {
	l, ok := c.Get(Key).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return l
}

// FromCtx retrieves the request logger from a context.Context
func FromCtx(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(ctxLoggerKey).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return l
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, l)
}
