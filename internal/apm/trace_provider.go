// Package apm configures OTEL tracing.
package apm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fd1az/mempool-block/internal/logger"
)

// Exporter names a span exporter.
type Exporter string

const (
	ZipkinExporter   Exporter = "zipkin"
	OTLPGRPCExporter Exporter = "otlp-grpc"
	OTLPHTTPExporter Exporter = "otlp-http"
	StdoutExporter   Exporter = "stdout"
	NoneExporter     Exporter = "none"
)

// TraceProvider is stopped on shutdown.
type TraceProvider interface {
	Stop() error
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

// Config selects the exporter and where it sends spans.
type Config struct {
	ServiceName string
	Exporter    Exporter
	Endpoint    string
	// Headers in key=value form, comma separated.
	Headers string
	// Writer for the stdout exporter; defaults to discarding.
	Writer io.Writer
}

// NewTraceProvider installs a global tracer provider for cfg.Exporter.
func NewTraceProvider(ctx context.Context, log logger.LoggerInterface, cfg Config) (TraceProvider, error) {
	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		log.Info(ctx, "tracing disabled")
		return emptyTraceProvider{}, nil
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("otel.exporter", string(cfg.Exporter)),
		))
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(ctx, "tracing enabled", "exporter", cfg.Exporter, "endpoint", cfg.Endpoint)

	return &traceProvider{tp}, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	headers, err := parseHeaders(cfg.Headers)
	if err != nil {
		return nil, err
	}

	switch cfg.Exporter {
	case NoneExporter, "":
		return nil, nil
	case StdoutExporter:
		w := cfg.Writer
		if w == nil {
			w = io.Discard
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	case ZipkinExporter:
		return zipkin.New(cfg.Endpoint)
	case OTLPGRPCExporter:
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.Endpoint),
			otlptracegrpc.WithHeaders(headers),
		)
	case OTLPHTTPExporter:
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(cfg.Endpoint),
			otlptracehttp.WithHeaders(headers),
		)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}

func parseHeaders(raw string) (map[string]string, error) {
	headers := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return headers, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid otlp header %q, expected key=value", pair)
		}
		headers[k] = v
	}
	return headers, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return o.tp.Shutdown(ctx)
}
