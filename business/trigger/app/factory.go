package app

import (
	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/internal/logger"
)

// DetectorFactory builds one detector per page.
type DetectorFactory struct {
	config Config
	clock  clock.Clock
	logger logger.LoggerInterface
}

// NewDetectorFactory creates a factory.
func NewDetectorFactory(cfg Config, clk clock.Clock, log logger.LoggerInterface) *DetectorFactory {
	return &DetectorFactory{config: cfg, clock: clk, logger: log}
}

// New creates a detector bound to one page and its overlay.
func (f *DetectorFactory) New(act Activator, haptics Haptics, page Page) *Detector {
	return NewDetector(f.config, act, haptics, page, f.clock, f.logger)
}
