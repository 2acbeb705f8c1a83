package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrDecode marks a response body that could not be decoded into the result.
var ErrDecode = errors.New("httpclient: decode response")

// Request builds and executes a single GET.
type Request interface {
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result any) Request
	Get(ctx context.Context, path string) (*Response, error)
}

// Response wraps http.Response with the already-read body.
type Response struct {
	*http.Response
	body []byte
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ResponseErrorHandler turns a status and body into an error, or nil to accept.
type ResponseErrorHandler func(statusCode int, body []byte) error

// Label is a key-value pair attached to request metrics.
type Label struct {
	Key   string
	Value string
}

// NewLabel creates a new label.
func NewLabel(key, value string) Label {
	return Label{Key: key, Value: value}
}

type requestOptions struct {
	errorHandler ResponseErrorHandler
	labels       []Label
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithResponseErrorHandler runs before the body is decoded.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *requestOptions) { o.errorHandler = handler }
}

// WithLabels adds metric labels to the request.
func WithLabels(labels ...Label) RequestOption {
	return func(o *requestOptions) { o.labels = append(o.labels, labels...) }
}

type requestBuilder struct {
	c            *InstrumentedClient
	headers      map[string]string
	query        url.Values
	result       any
	errorHandler ResponseErrorHandler
	labels       []Label
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

// Get executes the request. A non-nil Response is returned whenever the server answered.
func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	fullURL := r.resolve(path)

	ctx, span := r.c.tracer.Start(ctx, "http.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.url", fullURL),
			attribute.String("provider", r.c.providerName),
		),
	)
	defer span.End()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.c.client.Do(req)
	if err != nil {
		r.recordError(ctx, span, err, start)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.recordError(ctx, span, err, start)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if r.c.traceBodies {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(body)),
		))
	}

	response := &Response{Response: resp, body: body}

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, body); handlerErr != nil {
			span.SetStatus(codes.Error, handlerErr.Error())
			r.recordMetrics(ctx, false, start)
			return response, handlerErr
		}
	}

	if r.result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode response")
			r.recordMetrics(ctx, false, start)
			return response, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}

	r.recordMetrics(ctx, response.IsSuccess(), start)
	return response, nil
}

func (r *requestBuilder) resolve(path string) string {
	full := path
	if r.c.baseURL != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = strings.TrimSuffix(r.c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) == 0 {
		return full
	}
	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + r.query.Encode()
}

func (r *requestBuilder) recordError(ctx context.Context, span trace.Span, err error, start time.Time) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	r.recordMetrics(ctx, false, start)
}

func (r *requestBuilder) recordMetrics(ctx context.Context, success bool, start time.Time) {
	attrs := make([]attribute.KeyValue, 0, len(r.labels)+2)
	attrs = append(attrs,
		attribute.String("provider", r.c.providerName),
		attribute.Bool("success", success),
	)
	for _, label := range r.labels {
		attrs = append(attrs, attribute.String(label.Key, label.Value))
	}

	set := metric.WithAttributes(attrs...)
	r.c.requestCounter.Add(ctx, 1, set)
	r.c.requestDuration.Record(ctx, time.Since(start).Seconds(), set)
}
