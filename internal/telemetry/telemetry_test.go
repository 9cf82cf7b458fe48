package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exp
}

func attr(kvs []attribute.KeyValue, key string) string {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestAPICallSpan(t *testing.T) {
	exp := recordSpans(t)

	_, span := APICall(context.Background(), "get_project", "GET", "/projects/{project_id}")
	End(span, nil, attribute.Int("http.response.status_code", 200))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "api.get_project", got.Name)
	assert.Equal(t, trace.SpanKindClient, got.SpanKind)
	assert.Equal(t, codes.Ok, got.Status.Code)
	assert.Equal(t, "/projects/{project_id}", attr(got.Attributes, "http.route"))
	assert.Equal(t, "200", attr(got.Attributes, "http.response.status_code"))
}

func TestCommandSpanRecordsError(t *testing.T) {
	exp := recordSpans(t)

	ctx, cmd := Command(context.Background(), "autosdlc submit")
	_, call := APICall(ctx, "create_project", "POST", "/projects")
	End(call, errors.New("connection refused"))
	End(cmd, nil)

	spans := exp.GetSpans()
	require.Len(t, spans, 2)

	call0, cmd0 := spans[0], spans[1]
	assert.Equal(t, codes.Error, call0.Status.Code)
	assert.NotEmpty(t, call0.Events)
	assert.Equal(t, cmd0.SpanContext.TraceID(), call0.SpanContext.TraceID())
	assert.Equal(t, "autosdlc submit", attr(cmd0.Attributes, "autosdlc.command"))
}

func TestStartWithoutEndpoint(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := context.Background()
	shutdown, err := Start(ctx, Config{Service: "autosdlc", Version: "test", SampleRate: 0.5})
	require.NoError(t, err)

	_, span := Command(ctx, "autosdlc status")
	End(span, nil)
	assert.NoError(t, shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestExporterEndpoints(t *testing.T) {
	for _, endpoint := range []string{"127.0.0.1:4318", "http://127.0.0.1:4318/v1/traces"} {
		t.Run(endpoint, func(t *testing.T) {
			exp, err := exporter(context.Background(), endpoint)
			require.NoError(t, err)
			require.NotNil(t, exp)
			assert.NoError(t, exp.Shutdown(context.Background()))
		})
	}
}
