package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/internal/apm"
	"github.com/fd1az/mempool-block/internal/apperror"
	"github.com/fd1az/mempool-block/internal/logger"
)

const (
	tracerName = "mempool.feed"
	meterName  = "mempool"
)

// FeedConfig holds the feed cadence.
type FeedConfig struct {
	PollInterval time.Duration
	FetchTimeout time.Duration
}

// DefaultFeedConfig returns the mempool.space cadence.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		PollInterval: 10 * time.Second,
		FetchTimeout: 5 * time.Second,
	}
}

type source string

const (
	sourceInitial source = "initial"
	sourcePoll    source = "poll"
	sourcePush    source = "push"
)

type feedMetrics struct {
	snapshots metric.Int64Counter
	blocks    metric.Int64Counter
	polls     metric.Int64Counter
	dropped   metric.Int64Counter
}

// FeedManager merges the push channel and the poller into snapshot and block callbacks.
type FeedManager struct {
	config  FeedConfig
	fetcher SnapshotFetcher
	stream  PushStream
	cb      Callbacks
	clock   clock.Clock
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *feedMetrics

	mu             sync.Mutex
	started        bool
	running        bool
	paused         bool
	ctx            context.Context
	cancel         context.CancelFunc
	sub            Subscription
	gen            uint64
	connState      domain.ConnectionState
	pollStop       chan struct{}
	pollTicker     *clock.Ticker
	lastSeenHeight int64
	lastSnapshot   domain.BlockSnapshot
	hasSnapshot    bool
	suppressed     bool
	pushSincePoll  bool
	lastPush       time.Time
	lastPoll       time.Time
}

// NewFeedManager creates a stopped feed.
func NewFeedManager(cfg FeedConfig, fetcher SnapshotFetcher, stream PushStream, cb Callbacks, clk clock.Clock, log logger.LoggerInterface) *FeedManager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultFeedConfig().PollInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFeedConfig().FetchTimeout
	}
	if clk == nil {
		clk = clock.New()
	}

	f := &FeedManager{
		config:    cfg,
		fetcher:   fetcher,
		stream:    stream,
		cb:        cb,
		clock:     clk,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
		connState: domain.StateDisconnected,
	}
	f.initMetrics()
	return f
}

func (f *FeedManager) initMetrics() {
	meter := otel.Meter(meterName)
	f.metrics = &feedMetrics{}
	f.metrics.snapshots, _ = meter.Int64Counter("mempool_snapshots_total",
		metric.WithDescription("Snapshots accepted, by source"))
	f.metrics.blocks, _ = meter.Int64Counter("mempool_blocks_total",
		metric.WithDescription("Newly confirmed blocks observed"))
	f.metrics.polls, _ = meter.Int64Counter("mempool_polls_total",
		metric.WithDescription("Poll attempts, by outcome"))
	f.metrics.dropped, _ = meter.Int64Counter("mempool_dropped_total",
		metric.WithDescription("Feed inputs discarded, by reason"))
}

// Start opens the push channel, starts polling and issues the initial fetch.
// Calling Start on a feed that was already started does nothing.
func (f *FeedManager) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return nil
	}
	f.started = true
	f.running = true
	f.ctx, f.cancel = context.WithCancel(ctx)
	runCtx := f.ctx
	err := f.openLocked()
	f.startPollerLocked()
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn(ctx, "push channel unavailable, polling only",
			"error", err, "code", apperror.GetCode(err))
	}

	go f.initialFetch(runCtx)
	f.emitStatus()
	return nil
}

// Stop closes the push channel and stops polling. Safe to call repeatedly.
func (f *FeedManager) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	f.connState = domain.StateStopped
	sub := f.detachLocked()
	f.stopPollerLocked()
	f.cancel()
	f.mu.Unlock()

	if sub != nil {
		_ = sub.Close()
	}
}

// Pause drops the push connection and stops polling, keeping heights and the last snapshot.
func (f *FeedManager) Pause() {
	f.mu.Lock()
	if !f.running || f.paused {
		f.mu.Unlock()
		return
	}
	f.paused = true
	f.connState = domain.StatePaused
	sub := f.detachLocked()
	f.stopPollerLocked()
	f.mu.Unlock()

	if sub != nil {
		_ = sub.Close()
	}
	f.logger.Debug(f.ctx, "feed paused")
	f.emitStatus()
}

// Resume reopens the push channel and restarts polling. It is a no-op while a connection exists.
func (f *FeedManager) Resume() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.paused = false
	var err error
	if f.sub == nil {
		err = f.openLocked()
	}
	if f.pollStop == nil {
		f.startPollerLocked()
	}
	ctx := f.ctx
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn(ctx, "push channel reopen failed", "error", err)
	}
	f.logger.Debug(ctx, "feed resumed")
	f.emitStatus()
}

// SetSuppressed holds back snapshot callbacks while true. Snapshots are still recorded.
func (f *FeedManager) SetSuppressed(suppressed bool) {
	f.mu.Lock()
	f.suppressed = suppressed
	f.mu.Unlock()
}

// LastSnapshot returns the most recent snapshot from any source.
func (f *FeedManager) LastSnapshot() (domain.BlockSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSnapshot, f.hasSnapshot
}

// LastSeenHeight returns the highest block height observed.
func (f *FeedManager) LastSeenHeight() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSeenHeight
}

// Status returns the current feed status.
func (f *FeedManager) Status() domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusLocked()
}

// Connected reports whether a push subscription handle is held.
func (f *FeedManager) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub != nil
}

func (f *FeedManager) statusLocked() domain.Status {
	return domain.Status{
		State:          f.connState,
		LastSeenHeight: f.lastSeenHeight,
		HasSnapshot:    f.hasSnapshot,
		LastPush:       f.lastPush,
		LastPoll:       f.lastPoll,
	}
}

func (f *FeedManager) emitStatus() {
	if f.cb.OnStatus == nil {
		return
	}
	f.cb.OnStatus(f.Status())
}

// openLocked opens a new subscription tagged with a fresh generation.
func (f *FeedManager) openLocked() error {
	if f.stream == nil {
		return nil
	}
	f.gen++
	f.connState = domain.StateConnecting
	sub, err := f.stream.Open(f.ctx, &subscriber{f: f, gen: f.gen})
	if err != nil {
		f.connState = domain.StateDisconnected
		return err
	}
	f.sub = sub
	return nil
}

func (f *FeedManager) detachLocked() Subscription {
	sub := f.sub
	f.sub = nil
	f.gen++
	return sub
}

func (f *FeedManager) startPollerLocked() {
	stop := make(chan struct{})
	f.pollStop = stop
	f.pollTicker = f.clock.Ticker(f.config.PollInterval)
	go f.pollLoop(f.ctx, f.pollTicker, stop)
}

func (f *FeedManager) stopPollerLocked() {
	if f.pollStop != nil {
		f.pollTicker.Stop()
		close(f.pollStop)
		f.pollStop = nil
		f.pollTicker = nil
	}
}

func (f *FeedManager) pollLoop(ctx context.Context, ticker *clock.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			f.poll(ctx)
		}
	}
}

func (f *FeedManager) initialFetch(ctx context.Context) {
	raw, err := f.fetch(ctx, sourceInitial)
	if err != nil || raw == nil {
		return
	}
	f.applyCandidate(ctx, raw, sourceInitial)
}

func (f *FeedManager) poll(ctx context.Context) {
	raw, err := f.fetch(ctx, sourcePoll)

	outcome := "applied"
	switch {
	case err != nil:
		outcome = "error"
		f.endPollCycle()
	case raw == nil:
		outcome = "empty"
		f.endPollCycle()
	case f.applyCandidate(ctx, raw, sourcePoll):
		outcome = "push_fresh"
	}
	f.metrics.polls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (f *FeedManager) endPollCycle() {
	f.mu.Lock()
	f.pushSincePoll = false
	f.lastPoll = f.clock.Now()
	f.mu.Unlock()
}

func (f *FeedManager) fetch(ctx context.Context, src source) (*domain.RawBlock, error) {
	if f.fetcher == nil {
		return nil, nil
	}

	ctx, span := f.tracer.Start(ctx, "mempool.fetch",
		trace.WithAttributes(attribute.String("source", string(src))))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.config.FetchTimeout)
	defer cancel()

	raw, err := f.fetcher.FetchNextBlock(ctx)
	if err != nil {
		apm.NoticeError(span, err)
		if ctx.Err() == nil || f.isRunning() {
			f.logger.Warn(ctx, "mempool fetch failed",
				"source", src, "error", err, "code", apperror.GetCode(err))
		}
		return nil, err
	}
	return raw, nil
}

func (f *FeedManager) isRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// applyCandidate records a candidate block and reports it unless suppressed or unchanged.
// It returns true when a poll result was discarded because a push landed during the cycle.
func (f *FeedManager) applyCandidate(ctx context.Context, raw *domain.RawBlock, src source) (superseded bool) {
	snap, err := domain.NewSnapshot(*raw)
	if err != nil {
		if src == sourcePoll {
			f.endPollCycle()
		}
		f.metrics.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "malformed")))
		f.logger.Warn(ctx, "dropping malformed block", "source", src, "error", err)
		return false
	}

	f.mu.Lock()
	if src == sourcePoll {
		superseded = f.pushSincePoll
		f.pushSincePoll = false
		f.lastPoll = f.clock.Now()
	}
	if !f.running || superseded || (src == sourceInitial && f.hasSnapshot) {
		f.mu.Unlock()
		return superseded
	}
	unchanged := f.hasSnapshot && f.lastSnapshot == snap
	f.lastSnapshot = snap
	f.hasSnapshot = true
	if src == sourcePush {
		f.pushSincePoll = true
		f.lastPush = f.clock.Now()
	}
	fire := !f.suppressed && !unchanged
	f.mu.Unlock()

	f.metrics.snapshots.Add(ctx, 1, metric.WithAttributes(attribute.String("source", string(src))))
	if fire && f.cb.OnSnapshot != nil {
		f.cb.OnSnapshot(snap)
	}
	return false
}

func (f *FeedManager) applyBaseline(heights []int64) {
	top := slices.Max(heights)
	f.mu.Lock()
	if top > f.lastSeenHeight {
		f.lastSeenHeight = top
	}
	f.mu.Unlock()
}

func (f *FeedManager) applyConfirmed(ctx context.Context, height int64) {
	f.mu.Lock()
	if !f.running || f.lastSeenHeight == 0 || height <= f.lastSeenHeight {
		f.mu.Unlock()
		return
	}
	f.lastSeenHeight = height
	f.mu.Unlock()

	f.metrics.blocks.Add(ctx, 1)
	f.logger.Info(ctx, "new block confirmed", "height", height)
	if f.cb.OnNewBlock != nil {
		f.cb.OnNewBlock(height)
	}
}

// subscriber binds push traffic to the subscription generation that produced it.
type subscriber struct {
	f   *FeedManager
	gen uint64
}

func (s *subscriber) current() bool {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.f.running && s.f.gen == s.gen
}

func (s *subscriber) HandleMessage(ctx context.Context, msg domain.FeedMessage) {
	if !s.current() {
		return
	}
	if len(msg.Baseline) > 0 {
		s.f.applyBaseline(msg.Baseline)
	}
	if msg.Confirmed > 0 {
		s.f.applyConfirmed(ctx, msg.Confirmed)
	}
	if msg.Candidate != nil {
		s.f.applyCandidate(ctx, msg.Candidate, sourcePush)
	}
}

func (s *subscriber) HandleState(state domain.ConnectionState) {
	s.f.mu.Lock()
	if !s.f.running || s.f.gen != s.gen {
		s.f.mu.Unlock()
		return
	}
	s.f.connState = state
	s.f.mu.Unlock()
	s.f.emitStatus()
}
