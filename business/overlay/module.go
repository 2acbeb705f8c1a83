// Package overlay implements the live overlay bounded context.
package overlay

import (
	"context"

	"github.com/benbjohnson/clock"

	mempoolApp "github.com/fd1az/mempool-block/business/mempool/app"
	mempoolDI "github.com/fd1az/mempool-block/business/mempool/di"
	"github.com/fd1az/mempool-block/business/overlay/app"
	overlayDI "github.com/fd1az/mempool-block/business/overlay/di"
	"github.com/fd1az/mempool-block/business/overlay/domain"
	"github.com/fd1az/mempool-block/internal/config"
	"github.com/fd1az/mempool-block/internal/di"
	"github.com/fd1az/mempool-block/internal/logger"
	"github.com/fd1az/mempool-block/internal/monolith"
)

// Module implements the overlay bounded context. It depends on the mempool module.
type Module struct {
	// Loader prepares the animation engine. Nil means nothing to load.
	Loader app.LoaderFunc
}

// RegisterServices registers the controller factory.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, overlayDI.EngineLoader, func(sr di.ServiceRegistry) app.EngineLoader {
		return app.NewCachedLoader(m.Loader)
	})

	di.RegisterToken(c, overlayDI.ControllerFactory, func(sr di.ServiceRegistry) *app.ControllerFactory {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		clk := sr.Get(monolith.ClockKey).(clock.Clock)

		feeds := mempoolDI.GetFeedFactory(sr)
		return app.NewControllerFactory(
			ControllerConfig(cfg.Overlay),
			app.FeedFactoryFunc(func(cb mempoolApp.Callbacks) app.Feed {
				return feeds.New(cb)
			}),
			overlayDI.GetEngineLoader(sr),
			clk,
			log,
		)
	})
	return nil
}

// Startup resolves the factory so wiring errors surface at boot.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	f := overlayDI.GetControllerFactory(mono.Services())
	mono.Logger().Info(ctx, "overlay module started",
		"block", f.Config().BlockSize, "celebration", f.Config().Celebration.Total())
	return nil
}

// ControllerConfig maps the overlay config section onto controller settings.
func ControllerConfig(o config.OverlayConfig) app.Config {
	cfg := app.DefaultConfig()
	cfg.BlockSize = domain.Size{W: float64(o.BlockWidth), H: float64(o.BlockHeight)}
	cfg.ShadowOpacity = o.ShadowOpacity
	cfg.FlyIn = o.FlyIn
	cfg.FlyOut = o.FlyOut
	cfg.PulsePeriod = o.PulsePeriod
	cfg.PulseDim = o.PulseDim
	cfg.StaggerStep = o.StaggerStep
	cfg.StaggerLine = o.StaggerLine
	cfg.Heartbeat = o.Heartbeat
	cfg.FrameInterval = o.FrameInterval
	cfg.Haptics = o.Haptics
	cfg.Celebration = domain.CelebrationTiming{
		FadeOut:  o.Celebration.FadeOut,
		Emphasis: o.Celebration.Emphasis,
		Hold:     o.Celebration.Hold,
		Nudge:    o.Celebration.Nudge,
		SlideOff: o.Celebration.SlideOff,
		Pause:    o.Celebration.Pause,
		Reenter:  o.Celebration.Reenter,
	}
	return cfg
}
