package mempoolspace

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/mempool-block/business/mempool/app"
	"github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/internal/apperror"
	"github.com/fd1az/mempool-block/internal/logger"
	"github.com/fd1az/mempool-block/internal/wsconn"
)

const (
	// BaseWSURL is the public mempool.space push endpoint.
	BaseWSURL = "wss://mempool.space/api/v1/ws"

	meterName = "mempoolspace"
)

var _ app.PushStream = (*Stream)(nil)

// StreamConfig holds push channel settings.
type StreamConfig struct {
	URL             string
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	MaxReconnects   int
	MaxMessageBytes int64
	PingInterval    time.Duration
}

// Stream opens mempool.space push subscriptions.
type Stream struct {
	config      StreamConfig
	logger      logger.LoggerInterface
	frames      metric.Int64Counter
	parseErrors metric.Int64Counter
}

// NewStream creates a push stream factory.
func NewStream(cfg StreamConfig, log logger.LoggerInterface) (*Stream, error) {
	if cfg.URL == "" {
		cfg.URL = BaseWSURL
	}

	meter := otel.Meter(meterName)
	frames, err := meter.Int64Counter("mempool_push_frames_total",
		metric.WithDescription("Push frames received"))
	if err != nil {
		return nil, err
	}
	parseErrors, err := meter.Int64Counter("mempool_push_parse_errors_total",
		metric.WithDescription("Push frames that failed to decode"))
	if err != nil {
		return nil, err
	}

	return &Stream{config: cfg, logger: log, frames: frames, parseErrors: parseErrors}, nil
}

// Open creates a connection, sends the want handshake on every dial and connects in the background.
func (s *Stream) Open(ctx context.Context, h app.StreamHandler) (app.Subscription, error) {
	wsCfg := wsconn.DefaultConfig(s.config.URL, "mempool.space")
	if s.config.InitialBackoff > 0 {
		wsCfg.InitialBackoff = s.config.InitialBackoff
	}
	if s.config.MaxBackoff > 0 {
		wsCfg.MaxBackoff = s.config.MaxBackoff
	}
	if s.config.MaxMessageBytes > 0 {
		wsCfg.MaxMessageSize = s.config.MaxMessageBytes
	}
	if s.config.PingInterval > 0 {
		wsCfg.PingInterval = s.config.PingInterval
	}
	wsCfg.MaxReconnects = s.config.MaxReconnects

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, err
	}

	conn.OnConnect(func(ctx context.Context) error {
		return conn.SendJSON(ctx, NewWantRequest())
	})
	conn.OnStateChange(func(state wsconn.State, cause error) {
		if cause != nil {
			s.logger.Debug(ctx, "push channel state", "state", state, "error", cause)
		}
		h.HandleState(mapState(state))
	})
	conn.OnMessage(func(msgCtx context.Context, data []byte) {
		s.frames.Add(msgCtx, 1)
		msg, err := DecodeFrame(data)
		if err != nil {
			s.parseErrors.Add(msgCtx, 1)
			s.logger.Debug(msgCtx, "ignoring malformed push frame",
				"error", err, "data", string(data[:min(len(data), 200)]))
			return
		}
		if msg.Empty() {
			return
		}
		h.HandleMessage(msgCtx, msg)
	})

	sub := &subscription{conn: conn}

	go func() {
		err := conn.ConnectWithRetry(ctx)
		if err != nil && !sub.closing() && !errors.Is(err, context.Canceled) {
			s.logger.Warn(ctx, "push channel gave up", "error", err, "code", apperror.GetCode(err))
		}
	}()

	return sub, nil
}

type subscription struct {
	conn *wsconn.Client
}

func (s *subscription) Close() error {
	return s.conn.Close()
}

func (s *subscription) State() domain.ConnectionState {
	return mapState(s.conn.State())
}

func (s *subscription) closing() bool {
	return s.conn.State() == wsconn.StateClosed
}

func mapState(state wsconn.State) domain.ConnectionState {
	switch state {
	case wsconn.StateConnecting:
		return domain.StateConnecting
	case wsconn.StateConnected:
		return domain.StateConnected
	case wsconn.StateReconnecting:
		return domain.StateReconnecting
	case wsconn.StateClosed:
		return domain.StateStopped
	default:
		return domain.StateDisconnected
	}
}
