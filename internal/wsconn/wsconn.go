// Package wsconn provides a WebSocket client with reconnection on top of coder/websocket.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/mempool-block/internal/apperror"
)

const meterName = "wsconn"

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	PongTimeout    time.Duration
	ReadTimeout    time.Duration // 0 = no per-read deadline
	WriteTimeout   time.Duration
	MaxMessageSize int64
	AutoReconnect  bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 1 << 20,
		AutoReconnect:  true,
	}
}

// MessageHandler receives every data frame.
type MessageHandler func(ctx context.Context, msg []byte)

// StateHandler observes state transitions. err is the cause when there is one.
type StateHandler func(state State, err error)

// ConnectHandler runs after every successful dial, before frames are read.
type ConnectHandler func(ctx context.Context) error

type clientMetrics struct {
	messages   metric.Int64Counter
	reconnects metric.Int64Counter
}

// Client is a WebSocket client that redials after read or ping failures.
type Client struct {
	config Config

	conn    *websocket.Conn
	state   State
	stateMu sync.RWMutex

	onMessage  MessageHandler
	onState    StateHandler
	onConnect  ConnectHandler
	handlersMu sync.RWMutex

	ctx          context.Context
	cancel       context.CancelFunc
	closed       atomic.Bool
	reconnecting atomic.Bool
	// backoff is the next redial delay. It keeps growing across flapping
	// connections and drops back to zero, meaning InitialBackoff, once a data frame arrives.
	backoff atomic.Int64

	metrics *clientMetrics
	attrs   metric.MeasurementOption
}

// New creates a new WebSocket client.
func New(config Config) (*Client, error) {
	u, err := url.Parse(config.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("invalid websocket url: "+config.URL))
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		config: config,
		state:  StateDisconnected,
		ctx:    ctx,
		cancel: cancel,
		attrs:  metric.WithAttributes(attribute.String("conn", config.Name)),
	}
	c.initMetrics()

	return c, nil
}

func (c *Client) initMetrics() {
	meter := otel.Meter(meterName)
	c.metrics = &clientMetrics{}
	// Instrument creation only fails on invalid names; fall back to no-op values.
	c.metrics.messages, _ = meter.Int64Counter("ws_messages_total",
		metric.WithDescription("Total WebSocket frames received"))
	c.metrics.reconnects, _ = meter.Int64Counter("ws_reconnects_total",
		metric.WithDescription("Total WebSocket reconnect attempts"))
}

// OnMessage registers the frame handler.
func (c *Client) OnMessage(h MessageHandler) {
	c.handlersMu.Lock()
	c.onMessage = h
	c.handlersMu.Unlock()
}

// OnStateChange registers the state observer.
func (c *Client) OnStateChange(h StateHandler) {
	c.handlersMu.Lock()
	c.onState = h
	c.handlersMu.Unlock()
}

// OnConnect registers a hook run after each dial, used to (re)send subscriptions.
func (c *Client) OnConnect(h ConnectHandler) {
	c.handlersMu.Lock()
	c.onConnect = h
	c.handlersMu.Unlock()
}

// Connect dials once.
func (c *Client) Connect(ctx context.Context) error {
	return c.connect(ctx, StateConnecting)
}

// ConnectWithRetry dials until success, ctx cancellation, Close, or MaxReconnects.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	backoff := c.config.InitialBackoff
	var lastErr error

	for attempt := 0; ; attempt++ {
		if c.config.MaxReconnects > 0 && attempt > c.config.MaxReconnects {
			return apperror.New(apperror.CodeWebSocketConnectionError,
				apperror.WithCause(lastErr),
				apperror.WithContext(c.config.Name+": retries exhausted"))
		}

		if lastErr = c.Connect(ctx); lastErr == nil {
			return nil
		}
		if c.closed.Load() {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return lastErr
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, c.config.MaxBackoff)
	}
}

func (c *Client) connect(ctx context.Context, pending State) error {
	if c.closed.Load() {
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.config.Name))
	}
	c.setState(pending, nil)

	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		wrapped := apperror.Transient(apperror.CodeWebSocketConnectionError, c.config.Name, err)
		if pending == StateConnecting {
			c.setState(StateDisconnected, wrapped)
		}
		return wrapped
	}
	if c.config.MaxMessageSize > 0 {
		conn.SetReadLimit(c.config.MaxMessageSize)
	}

	c.stateMu.Lock()
	if c.closed.Load() {
		c.stateMu.Unlock()
		conn.CloseNow()
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.config.Name))
	}
	c.conn = conn
	c.stateMu.Unlock()

	c.handlersMu.RLock()
	hook := c.onConnect
	c.handlersMu.RUnlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			c.stateMu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.stateMu.Unlock()
			conn.CloseNow()

			wrapped := apperror.Transient(apperror.CodeSubscribeFailed, c.config.Name, err)
			if pending == StateConnecting {
				c.setState(StateDisconnected, wrapped)
			}
			return wrapped
		}
	}

	c.setState(StateConnected, nil)

	go c.readLoop(conn)
	if c.config.PingInterval > 0 {
		go c.pingLoop(conn)
	}
	return nil
}

func (c *Client) sendOn(ctx context.Context, conn *websocket.Conn, data []byte) error {
	if c.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.WriteTimeout)
		defer cancel()
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		readCtx := c.ctx
		var cancel context.CancelFunc = func() {}
		if c.config.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(c.ctx, c.config.ReadTimeout)
		}
		_, data, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}

		c.backoff.Store(0)
		c.metrics.messages.Add(c.ctx, 1, c.attrs)

		c.handlersMu.RLock()
		handler := c.onMessage
		c.handlersMu.RUnlock()
		if handler != nil {
			handler(c.ctx, data)
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !c.owns(conn) {
				return
			}
			ctx, cancel := context.WithTimeout(c.ctx, c.config.PongTimeout)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				c.handleDisconnect(conn, err)
				return
			}
		}
	}
}

func (c *Client) owns(conn *websocket.Conn) bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.conn == conn
}

// handleDisconnect tears down conn once, then redials if configured.
func (c *Client) handleDisconnect(conn *websocket.Conn, cause error) {
	c.stateMu.Lock()
	if c.conn != conn {
		c.stateMu.Unlock()
		return
	}
	c.conn = nil
	c.stateMu.Unlock()

	conn.CloseNow()
	if c.closed.Load() {
		return
	}

	err := apperror.Transient(apperror.CodeWebSocketReconnecting, c.config.Name, cause)
	if !c.config.AutoReconnect {
		c.setState(StateDisconnected, err)
		return
	}
	c.setState(StateReconnecting, err)
	go c.reconnectLoop()
}

func (c *Client) reconnectLoop() {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	for c.redial() {
		// The new connection dropped while this loop held the flag.
		if !c.reconnecting.CompareAndSwap(false, true) {
			return
		}
	}
}

// redial retries until connected or stopped, then releases the reconnect flag.
// It reports whether the fresh connection was already lost again.
func (c *Client) redial() bool {
	backoff := c.nextDelay()
	for attempt := 1; ; attempt++ {
		if c.config.MaxReconnects > 0 && attempt > c.config.MaxReconnects {
			c.reconnecting.Store(false)
			c.setState(StateDisconnected, apperror.New(apperror.CodeWebSocketConnectionError,
				apperror.WithContext(c.config.Name+": retries exhausted")))
			return false
		}

		select {
		case <-c.ctx.Done():
			c.reconnecting.Store(false)
			return false
		case <-time.After(backoff):
		}

		c.metrics.reconnects.Add(c.ctx, 1, c.attrs)
		backoff = nextBackoff(backoff, c.config.MaxBackoff)
		// Stored before the dial so the first data frame on the new connection clears it.
		c.backoff.Store(int64(backoff))
		err := c.connect(c.ctx, StateReconnecting)
		if err == nil {
			c.reconnecting.Store(false)
			return !c.live()
		}
		if errors.Is(err, apperror.New(apperror.CodeWebSocketClosed)) {
			c.reconnecting.Store(false)
			return false
		}
	}
}

func (c *Client) nextDelay() time.Duration {
	if d := time.Duration(c.backoff.Load()); d > 0 {
		return d
	}
	return c.config.InitialBackoff
}

func (c *Client) live() bool {
	if c.closed.Load() {
		return true
	}
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.conn != nil
}

// Send writes a text frame.
func (c *Client) Send(ctx context.Context, data []byte) error {
	c.stateMu.RLock()
	conn := c.conn
	c.stateMu.RUnlock()

	if conn == nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext(c.config.Name+": not connected"))
	}
	if err := c.sendOn(ctx, conn, data); err != nil {
		return apperror.Transient(apperror.CodeWebSocketSendError, c.config.Name, err)
	}
	return nil
}

// SendJSON marshals v and writes it as a text frame.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperror.New(apperror.CodeInvalidInput, apperror.WithCause(err))
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// IsConnected reports whether a connection is live.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Name returns the configured connection name.
func (c *Client) Name() string {
	return c.config.Name
}

// Close stops reconnection and closes the connection. Safe to call repeatedly.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.cancel()

	c.stateMu.Lock()
	conn := c.conn
	c.conn = nil
	c.stateMu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "client closing")
	}
	c.setState(StateClosed, nil)
	return nil
}

func (c *Client) setState(state State, err error) {
	c.stateMu.Lock()
	if c.state == StateClosed || (c.state == state && err == nil) {
		c.stateMu.Unlock()
		return
	}
	c.state = state
	c.stateMu.Unlock()

	c.handlersMu.RLock()
	h := c.onState
	c.handlersMu.RUnlock()
	if h != nil {
		h(state, err)
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
