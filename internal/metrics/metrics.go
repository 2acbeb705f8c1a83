// Package metrics sets up the OTEL meter provider and the Prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/fd1az/mempool-block/internal/logger"
)

// Reader selects where metrics go.
type Reader string

const (
	PrometheusReader Reader = "prometheus"
	OTLPReader       Reader = "otlp"
)

// ReaderConfig configures one metric reader.
type ReaderConfig struct {
	Reader   Reader
	Endpoint string
	Headers  map[string]string
	Insecure bool
	Interval time.Duration
}

// Config configures the provider.
type Config struct {
	ServiceName string
	Readers     []ReaderConfig
	// Port for the /metrics endpoint; 0 disables serving.
	Port int
}

// OptionFn mutates a Config.
type OptionFn func(Config) Config

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) OptionFn {
	return func(c Config) Config {
		c.ServiceName = name
		return c
	}
}

// WithReader appends a metric reader.
func WithReader(rc ReaderConfig) OptionFn {
	return func(c Config) Config {
		c.Readers = append(c.Readers, rc)
		return c
	}
}

// WithPort sets the Prometheus scrape port.
func WithPort(port int) OptionFn {
	return func(c Config) Config {
		c.Port = port
		return c
	}
}

// Provider owns the meter provider and, when Prometheus is enabled, its registry.
type Provider struct {
	mp       *sdkmetric.MeterProvider
	registry *promclient.Registry
	port     int
	server   *http.Server
	log      logger.LoggerInterface
}

// NewProvider builds the meter provider and installs it globally.
func NewProvider(ctx context.Context, log logger.LoggerInterface, options ...OptionFn) (*Provider, error) {
	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}
	if len(cfg.Readers) == 0 {
		cfg.Readers = []ReaderConfig{{Reader: PrometheusReader}}
	}

	p := &Provider{port: cfg.Port, log: log}

	var opts []sdkmetric.Option
	for _, rc := range cfg.Readers {
		switch rc.Reader {
		case PrometheusReader:
			p.registry = promclient.NewRegistry()
			exp, err := prometheus.New(prometheus.WithRegisterer(p.registry))
			if err != nil {
				return nil, fmt.Errorf("prometheus exporter: %w", err)
			}
			opts = append(opts, sdkmetric.WithReader(exp))
		case OTLPReader:
			grpcOpts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(rc.Endpoint),
				otlpmetricgrpc.WithHeaders(rc.Headers),
			}
			if rc.Insecure {
				grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
			}
			exp, err := otlpmetricgrpc.New(ctx, grpcOpts...)
			if err != nil {
				return nil, fmt.Errorf("otlp metric exporter: %w", err)
			}
			interval := rc.Interval
			if interval <= 0 {
				interval = 30 * time.Second
			}
			opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))))
		default:
			return nil, fmt.Errorf("unknown metric reader %q", rc.Reader)
		}
	}

	opts = append(opts, sdkmetric.WithResource(
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)),
	))

	p.mp = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(p.mp)

	return p, nil
}

// Meter returns a named meter.
func (p *Provider) Meter(name string, options ...metric.MeterOption) metric.Meter {
	return p.mp.Meter(name, options...)
}

// MeterProvider exposes the underlying provider for injection.
func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.mp
}

// Handler serves the Prometheus registry, or 404 when Prometheus is not enabled.
func (p *Provider) Handler() http.Handler {
	if p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve starts the scrape endpoint in the background.
func (p *Provider) Serve(ctx context.Context) error {
	if p.port == 0 || p.registry == nil {
		return nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", p.port))
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	p.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	p.log.Info(ctx, "serving metrics", "addr", ln.Addr().String(), "path", "/metrics")

	go func() {
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error(ctx, "metrics server stopped", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the endpoint and flushes readers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.server != nil {
		errs = append(errs, p.server.Shutdown(ctx))
	}
	errs = append(errs, p.mp.Shutdown(ctx))
	return errors.Join(errs...)
}
