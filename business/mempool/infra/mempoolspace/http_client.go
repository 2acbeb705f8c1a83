package mempoolspace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/mempool-block/business/mempool/app"
	"github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/internal/apperror"
	"github.com/fd1az/mempool-block/internal/circuitbreaker"
	"github.com/fd1az/mempool-block/internal/httpclient"
	"github.com/fd1az/mempool-block/internal/logger"
	"github.com/fd1az/mempool-block/internal/ratelimit"
)

const (
	tracerName = "mempoolspace"

	// BaseAPIURL is the public mempool.space instance.
	BaseAPIURL = "https://mempool.space"

	mempoolBlocksEndpoint = "/api/v1/fees/mempool-blocks"
)

var _ app.SnapshotFetcher = (*HTTPClient)(nil)

// HTTPClientConfig holds configuration for the REST client.
type HTTPClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerMin int
	UserAgent      string
}

// HTTPClient fetches projected blocks over REST.
type HTTPClient struct {
	client  *httpclient.InstrumentedClient
	breaker *circuitbreaker.CircuitBreaker[*domain.RawBlock]
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewHTTPClient creates a REST client.
func NewHTTPClient(cfg HTTPClientConfig, log logger.LoggerInterface) (*HTTPClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "mempool-block"
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("mempool.space"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": ua,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("mempool-http")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	cbCfg.IsSuccessful = func(err error) bool {
		// Bad payloads mean the upstream answered; only transport failures trip the breaker.
		return err == nil || apperror.GetKind(err) == apperror.KindMalformed
	}

	return &HTTPClient{
		client:  client,
		breaker: circuitbreaker.New[*domain.RawBlock](cbCfg),
		limiter: ratelimit.New(cfg.RequestsPerMin),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// FetchNextBlock returns the first projected block, or nil when the list is empty.
func (c *HTTPClient) FetchNextBlock(ctx context.Context) (*domain.RawBlock, error) {
	ctx, span := c.tracer.Start(ctx, "mempoolspace.http.mempool_blocks")
	defer span.End()

	// Sessions share one limiter; a caller queues for a token until its own deadline.
	if err := c.limiter.Wait(ctx); err != nil {
		err = apperror.Wrap(err, apperror.CodeRateLimitExceeded, "mempool-blocks")
		span.RecordError(err)
		return nil, err
	}

	raw, err := c.breaker.Execute(func() (*domain.RawBlock, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if raw != nil {
		span.SetAttributes(
			attribute.Int64("n_tx", raw.NTx),
			attribute.Float64("median_fee", raw.MedianFee),
		)
	}
	return raw, nil
}

func (c *HTTPClient) fetch(ctx context.Context) (*domain.RawBlock, error) {
	var blocks []domain.RawBlock
	_, err := c.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "mempool-blocks")),
		httpclient.WithResponseErrorHandler(statusErrorHandler),
	).
		SetResult(&blocks).
		Get(ctx, mempoolBlocksEndpoint)

	switch {
	case err == nil:
	case errors.Is(err, httpclient.ErrDecode):
		return nil, apperror.Malformed(apperror.CodeMempoolDecodeFailed, "mempool-blocks", err)
	case apperror.IsAppError(err):
		return nil, err
	default:
		return nil, apperror.Transient(apperror.CodeMempoolFetchFailed, "mempool-blocks", err)
	}

	if len(blocks) == 0 {
		c.logger.Debug(ctx, "mempool-blocks list empty")
		return nil, nil
	}

	first := blocks[0]
	return &first, nil
}

func statusErrorHandler(statusCode int, body []byte) error {
	if statusCode == http.StatusOK {
		return nil
	}
	snippet := string(body[:min(len(body), 200)])
	return apperror.New(apperror.CodeMempoolBadStatus,
		apperror.WithContext(fmt.Sprintf("HTTP %d: %s", statusCode, snippet)))
}
