// Package trigger implements the activation gesture bounded context.
package trigger

import (
	"context"

	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/business/trigger/app"
	triggerDI "github.com/fd1az/mempool-block/business/trigger/di"
	"github.com/fd1az/mempool-block/business/trigger/domain"
	"github.com/fd1az/mempool-block/internal/config"
	"github.com/fd1az/mempool-block/internal/di"
	"github.com/fd1az/mempool-block/internal/logger"
	"github.com/fd1az/mempool-block/internal/monolith"
)

// Module implements the trigger bounded context.
type Module struct{}

// RegisterServices registers the detector factory.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, triggerDI.DetectorFactory, func(sr di.ServiceRegistry) *app.DetectorFactory {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		clk := sr.Get(monolith.ClockKey).(clock.Clock)

		s := cfg.Trigger.Swipe
		return app.NewDetectorFactory(app.Config{
			Keyword:     cfg.Trigger.Keyword,
			IdleTimeout: cfg.Trigger.IdleTimeout,
			Swipe: domain.SwipeConfig{
				MinDistance:      s.MinDistance,
				AngleMin:         s.AngleMin,
				AngleMax:         s.AngleMax,
				ZoneExtend:       s.ZoneExtend,
				SuppressMinDY:    s.SuppressMinDY,
				MaxViewportWidth: s.MaxViewportWidth,
			},
		}, clk, log)
	})
	return nil
}

// Startup logs the configured activation word.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	triggerDI.GetDetectorFactory(mono.Services())
	mono.Logger().Info(ctx, "trigger module started", "keyword", mono.Config().Trigger.Keyword)
	return nil
}
