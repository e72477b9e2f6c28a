package telemetry

import (
	"context"
	"io"
	"os"
	"strings"

	"workspace-service/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "workspace-service"

// Tracer returns the service tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func newStdoutExporter(w io.Writer) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
}

func newCollectorExporter(endpoint string) (sdktrace.SpanExporter, error) {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(endpoint),
	)
}

// NewProvider installs the global tracer provider. Spans go to the OTLP collector when an
// endpoint is configured, to stdout when enabled, and nowhere otherwise.
// Returns a teardown func.
func NewProvider(cfg *config.Config, log *zap.Logger) func() {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch {
	case cfg.Telemetry.OTLPEndpoint != "":
		exp, err = newCollectorExporter(cfg.Telemetry.OTLPEndpoint)
	case cfg.Telemetry.Stdout:
		exp, err = newStdoutExporter(os.Stdout)
	default:
		log.Info("Tracing exporter disabled")
		return func() {}
	}
	if err != nil {
		log.Error("Unable to create trace exporter", zap.Error(err))
		return func() {}
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.Server.ServiceName),
		attribute.String("deployment.environment", cfg.Server.Env),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Unable to shutdown trace provider", zap.Error(err))
		}
	}
}
