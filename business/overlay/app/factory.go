package app

import (
	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/internal/logger"
)

// ControllerFactory builds one controller per page. Feeds and the engine loader are shared.
type ControllerFactory struct {
	config Config
	feeds  FeedFactory
	loader EngineLoader
	clock  clock.Clock
	logger logger.LoggerInterface
}

// NewControllerFactory creates a factory.
func NewControllerFactory(cfg Config, feeds FeedFactory, loader EngineLoader, clk clock.Clock, log logger.LoggerInterface) *ControllerFactory {
	return &ControllerFactory{config: cfg, feeds: feeds, loader: loader, clock: clk, logger: log}
}

// Config returns the overlay settings new controllers use.
func (f *ControllerFactory) Config() Config {
	return f.config
}

// New creates a controller drawing with r on page p. A nil loader uses the shared one.
func (f *ControllerFactory) New(r Renderer, p Page, h Haptics, loader EngineLoader) *Controller {
	if loader == nil {
		loader = f.loader
	}
	return NewController(f.config, r, p, h, loader, f.feeds, f.clock, f.logger)
}
