// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/mempool-block/internal/config"
	"github.com/fd1az/mempool-block/internal/di"
	"github.com/fd1az/mempool-block/internal/logger"
)

// Global service names registered by New.
const (
	ConfigKey        = "config"
	LoggerKey        = "logger"
	ClockKey         = "clock"
	MeterProviderKey = "meterProvider"
)

// Monolith is the application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Clock() clock.Clock
	MeterProvider() metric.MeterProvider
	Services() di.ServiceRegistry
}

// Module is a bounded context that registers services and starts up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Option customizes the container.
type Option func(*app)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clk clock.Clock) Option {
	return func(a *app) { a.clock = clk }
}

// WithMeterProvider replaces the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(a *app) { a.meterProvider = mp }
}

type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	clock         clock.Clock
	meterProvider metric.MeterProvider
	container     di.Container
}

// New creates a Monolith with the shared services registered.
func New(cfg *config.Config, log logger.LoggerInterface, opts ...Option) *app {
	a := &app{
		config:    cfg,
		logger:    log,
		clock:     clock.New(),
		container: di.NewContainer(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.meterProvider == nil {
		a.meterProvider = otel.GetMeterProvider()
	}

	a.container.Register(ConfigKey, cfg)
	a.container.Register(LoggerKey, log)
	a.container.Register(ClockKey, a.clock)
	a.container.Register(MeterProviderKey, a.meterProvider)

	return a
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Clock() clock.Clock {
	return a.clock
}

func (a *app) MeterProvider() metric.MeterProvider {
	return a.meterProvider
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
