// Package telemetry traces autosdlc commands and backend API calls with
// OpenTelemetry. Spans are exported over OTLP/HTTP when an endpoint is set.
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const scope = "github.com/autosdlc/autosdlc"

// Config selects where spans go.
type Config struct {
	Service string
	Version string

	// Endpoint is an OTLP/HTTP collector, host:port or URL. Empty records
	// spans without exporting them.
	Endpoint string

	// SampleRate in [0, 1]; 1 samples every trace.
	SampleRate float64
}

// Start installs a global tracer provider for cfg. The returned function
// flushes and stops it.
func Start(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.Service),
			attribute.String("service.version", cfg.Version),
		)),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	}

	if cfg.Endpoint != "" {
		exp, err := exporter(ctx, cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("otlp exporter for %s: %w", cfg.Endpoint, err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func sampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

func exporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	opt := otlptracehttp.WithEndpoint(endpoint)
	if strings.Contains(endpoint, "://") {
		opt = otlptracehttp.WithEndpointURL(endpoint)
	}
	return otlptracehttp.New(ctx, opt, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
}

func tracer() trace.Tracer {
	return otel.Tracer(scope)
}

// Command starts the span covering one CLI command.
func Command(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "command "+path, trace.WithAttributes(
		attribute.String("autosdlc.command", path),
	))
}

// APICall starts a client span for one backend request. route is the path
// template, e.g. /projects/{project_id}.
func APICall(ctx context.Context, op, method, route string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "api."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("autosdlc.op", op),
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
		))
}

// End finishes span, recording err when it is non-nil.
func End(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
