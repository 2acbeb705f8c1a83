// Package mempool implements the mempool feed bounded context.
package mempool

import (
	"context"

	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/business/mempool/app"
	mempoolDI "github.com/fd1az/mempool-block/business/mempool/di"
	"github.com/fd1az/mempool-block/business/mempool/infra/mempoolspace"
	"github.com/fd1az/mempool-block/internal/config"
	"github.com/fd1az/mempool-block/internal/di"
	"github.com/fd1az/mempool-block/internal/logger"
	"github.com/fd1az/mempool-block/internal/monolith"
)

// Module implements the mempool bounded context.
type Module struct{}

// RegisterServices registers the feed adapters and the per-session feed factory.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, mempoolDI.SnapshotFetcher, func(sr di.ServiceRegistry) app.SnapshotFetcher {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		client, err := mempoolspace.NewHTTPClient(mempoolspace.HTTPClientConfig{
			BaseURL:        cfg.Mempool.HTTPURL,
			Timeout:        cfg.Mempool.FetchTimeout,
			RequestsPerMin: cfg.Mempool.RequestsPerMin,
			UserAgent:      cfg.App.Name,
		}, log)
		if err != nil {
			panic("failed to create mempool.space http client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, mempoolDI.PushStream, func(sr di.ServiceRegistry) app.PushStream {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		stream, err := mempoolspace.NewStream(mempoolspace.StreamConfig{
			URL:             cfg.Mempool.WebSocketURL,
			InitialBackoff:  cfg.Mempool.InitialBackoff,
			MaxBackoff:      cfg.Mempool.MaxBackoff,
			MaxReconnects:   cfg.Mempool.MaxReconnects,
			MaxMessageBytes: cfg.Mempool.MaxMessageBytes,
		}, log)
		if err != nil {
			panic("failed to create mempool.space stream: " + err.Error())
		}
		return stream
	})

	di.RegisterToken(c, mempoolDI.FeedFactory, func(sr di.ServiceRegistry) *app.FeedFactory {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		clk := sr.Get(monolith.ClockKey).(clock.Clock)

		return app.NewFeedFactory(
			app.FeedConfig{
				PollInterval: cfg.Mempool.PollInterval,
				FetchTimeout: cfg.Mempool.FetchTimeout,
			},
			mempoolDI.GetSnapshotFetcher(sr),
			mempoolDI.GetPushStream(sr),
			clk,
			log,
		)
	})

	return nil
}

// Startup resolves the factory so wiring errors surface at boot. Feeds start per overlay session.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mempoolDI.GetFeedFactory(mono.Services())
	mono.Logger().Info(ctx, "mempool module started",
		"http_url", mono.Config().Mempool.HTTPURL,
		"ws_url", mono.Config().Mempool.WebSocketURL)
	return nil
}
