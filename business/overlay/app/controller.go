package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	mempoolApp "github.com/fd1az/mempool-block/business/mempool/app"
	mempoolDomain "github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/business/overlay/domain"
	"github.com/fd1az/mempool-block/internal/anim"
	"github.com/fd1az/mempool-block/internal/apperror"
	"github.com/fd1az/mempool-block/internal/logger"
)

const meterName = "overlay"

// Config holds the overlay geometry and timing.
type Config struct {
	BlockSize     domain.Size
	ShadowOpacity float64
	FlyIn         time.Duration
	FlyOut        time.Duration
	PulsePeriod   time.Duration
	PulseDim      float64
	StaggerStep   time.Duration
	StaggerLine   time.Duration
	Heartbeat     time.Duration
	HeartbeatPeak float64
	FrameInterval time.Duration
	Haptics       bool
	NudgeCells    float64
	Celebration   domain.CelebrationTiming
}

// DefaultConfig returns the stock overlay settings.
func DefaultConfig() Config {
	return Config{
		BlockSize:     domain.Size{W: 30, H: 13},
		ShadowOpacity: 0.75,
		FlyIn:         650 * time.Millisecond,
		FlyOut:        400 * time.Millisecond,
		PulsePeriod:   1200 * time.Millisecond,
		PulseDim:      0.88,
		StaggerStep:   50 * time.Millisecond,
		StaggerLine:   200 * time.Millisecond,
		Heartbeat:     300 * time.Millisecond,
		HeartbeatPeak: 0.06,
		FrameInterval: 33 * time.Millisecond,
		Haptics:       true,
		NudgeCells:    2,
		Celebration:   domain.DefaultCelebrationTiming(),
	}
}

type eventKind int

const (
	evActivate eventKind = iota
	evDismiss
	evInput
	evVisibility
	evResize
	evSnapshot
	evNewBlock
	evStatus
)

type event struct {
	kind     eventKind
	ctx      context.Context
	session  uint64
	input    Input
	visible  bool
	snapshot mempoolDomain.BlockSnapshot
	height   int64
	status   mempoolDomain.Status
}

type controllerMetrics struct {
	sessions     metric.Int64Counter
	celebrations metric.Int64Counter
	dropped      metric.Int64Counter
	renderErrors metric.Int64Counter
}

// Controller owns the single overlay session and drives its phase machine.
// Public methods only post events; all state lives on the Run goroutine.
type Controller struct {
	config   Config
	renderer Renderer
	page     Page
	haptics  Haptics
	loader   EngineLoader
	feeds    FeedFactory
	clock    clock.Clock
	logger   logger.LoggerInterface
	metrics  *controllerMetrics

	events chan event
	done   chan struct{}
	phase  atomic.Int32

	// Run goroutine state.
	runCtx  context.Context
	sess    *session
	nextID  uint64
	visible bool
}

// NewController creates a closed controller. Call Run to start processing.
func NewController(
	cfg Config,
	renderer Renderer,
	page Page,
	haptics Haptics,
	loader EngineLoader,
	feeds FeedFactory,
	clk clock.Clock,
	log logger.LoggerInterface,
) *Controller {
	if clk == nil {
		clk = clock.New()
	}
	if loader == nil {
		loader = NewCachedLoader(nil)
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultConfig().FrameInterval
	}

	c := &Controller{
		config:   cfg,
		renderer: renderer,
		page:     page,
		haptics:  haptics,
		loader:   loader,
		feeds:    feeds,
		clock:    clk,
		logger:   log,
		events:   make(chan event, 64),
		done:     make(chan struct{}),
		visible:  true,
	}
	c.initMetrics()
	return c
}

func (c *Controller) initMetrics() {
	meter := otel.Meter(meterName)
	c.metrics = &controllerMetrics{}
	c.metrics.sessions, _ = meter.Int64Counter("overlay_sessions_total",
		metric.WithDescription("Overlay sessions opened"))
	c.metrics.celebrations, _ = meter.Int64Counter("overlay_celebrations_total",
		metric.WithDescription("New block celebrations played"))
	c.metrics.dropped, _ = meter.Int64Counter("overlay_dropped_events_total",
		metric.WithDescription("Events discarded, by reason"))
	c.metrics.renderErrors, _ = meter.Int64Counter("overlay_render_errors_total",
		metric.WithDescription("Renderer calls that failed"))
}

// Phase returns the current phase.
func (c *Controller) Phase() domain.Phase {
	return domain.Phase(c.phase.Load())
}

// Activate opens the overlay. It is a no-op while one is open.
func (c *Controller) Activate(ctx context.Context) {
	c.post(event{kind: evActivate, ctx: ctx})
}

// Dismiss closes the overlay. Dismissing a closed or closing overlay does nothing.
func (c *Controller) Dismiss(ctx context.Context) {
	c.post(event{kind: evDismiss, ctx: ctx})
}

// Input delivers a page event to the open session's listeners.
func (c *Controller) Input(ctx context.Context, in Input) {
	c.post(event{kind: evInput, ctx: ctx, input: in})
}

// Relayout recenters the block after the viewport changed.
func (c *Controller) Relayout(ctx context.Context) {
	c.post(event{kind: evResize, ctx: ctx})
}

func (c *Controller) post(ev event) {
	if ev.ctx == nil {
		ev.ctx = context.Background()
	}
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// postFrom delivers a feed callback unless its session already ended.
func (c *Controller) postFrom(s *session, ev event) {
	ev.session = s.id
	ev.ctx = s.ctx
	select {
	case c.events <- ev:
	case <-s.ctx.Done():
	case <-c.done:
	}
}

// Run processes events until ctx is cancelled. An open session is torn down on return.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	defer close(c.done)
	defer c.teardown()

	c.logger.Debug(ctx, "overlay controller running")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			c.handle(ev)
		case <-c.sess.ticks():
			c.advance(ctx)
		}
	}
}

func (c *Controller) handle(ev event) {
	ctx := ev.ctx
	switch ev.kind {
	case evActivate:
		c.activate(ctx)
	case evDismiss:
		c.dismiss(ctx, "programmatic")
	case evInput:
		if c.sess == nil || !c.sess.live() {
			return
		}
		c.dismiss(ctx, ev.input.String())
	case evVisibility:
		c.setVisible(ctx, ev.visible)
	case evResize:
		c.relayout(ctx)
	case evSnapshot, evNewBlock, evStatus:
		if c.sess == nil || c.sess.id != ev.session {
			c.drop(ctx, "stale_session")
			return
		}
		switch ev.kind {
		case evSnapshot:
			c.onSnapshot(ctx, ev.snapshot)
		case evNewBlock:
			c.onNewBlock(ctx, ev.height)
		case evStatus:
			c.onStatus(ctx, ev.status)
		}
	}
}

func (c *Controller) drop(ctx context.Context, reason string) {
	c.metrics.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (c *Controller) activate(ctx context.Context) {
	if c.Phase().Open() {
		c.logger.Debug(ctx, "overlay already open, ignoring activation", "phase", c.Phase())
		return
	}

	origin, ok := c.page.OriginRect()
	if !ok || origin.Empty() {
		err := apperror.New(apperror.CodeOriginNotFound, apperror.WithContext("home square"))
		c.logger.Debug(ctx, "activation skipped", "error", err, "code", apperror.GetCode(err))
		return
	}

	if err := c.loader.Load(ctx); err != nil {
		c.logger.Warn(ctx, "activation aborted", "error", err, "code", apperror.GetCode(err))
		return
	}

	c.fire(ctx, domain.EventActivate, transitionArgs{origin: origin})
}

func (c *Controller) dismiss(ctx context.Context, reason string) {
	if c.fire(ctx, domain.EventDismiss, transitionArgs{}) {
		c.logger.Debug(ctx, "overlay dismissed", "reason", reason)
	}
}

type transitionArgs struct {
	origin domain.Rect
	height int64
}

// fire runs one transition and its effects, then pushes the resulting view.
func (c *Controller) fire(ctx context.Context, e domain.Event, args transitionArgs) bool {
	from := c.Phase()
	next, effects, ok := domain.Transition(from, e)
	if !ok {
		return false
	}
	c.logger.Debug(ctx, "overlay phase changed", "from", from, "to", next, "event", e)

	now := c.clock.Now()
	push := true
	for _, eff := range effects {
		switch eff {
		case domain.EffectMount:
			c.mount(ctx, args.origin, now)
			push = false
		case domain.EffectStartFeed:
			c.startFeed(ctx)
		case domain.EffectShowContent:
			c.showContent(now)
		case domain.EffectStartPulse:
			c.sess.view.Pulse = anim.StartPulse(c.config.PulsePeriod, c.config.PulseDim, now)
			if !c.visible {
				c.sess.view.Pulse = c.sess.view.Pulse.Pause(now)
			}
		case domain.EffectSuppressFeed:
			c.sess.feed.SetSuppressed(true)
		case domain.EffectPausePulse:
			c.sess.view.Pulse = c.sess.view.Pulse.Pause(now)
		case domain.EffectHaptics:
			if c.config.Haptics && c.haptics != nil {
				c.haptics.Vibrate(domain.CelebrationHaptics...)
			}
		case domain.EffectPlayCelebration:
			c.metrics.celebrations.Add(ctx, 1)
			c.sess.celebration = domain.NewCelebration(args.height, now, c.config.Celebration)
			c.applyCues(now)
		case domain.EffectReleaseFeed:
			c.sess.feed.SetSuppressed(false)
		case domain.EffectResumePulse:
			if c.visible {
				c.sess.view.Pulse = c.sess.view.Pulse.Resume(now)
			}
		case domain.EffectStopFeed:
			c.sess.feed.Stop()
		case domain.EffectStopPulse:
			c.sess.view.Pulse = anim.Pulse{}
		case domain.EffectCancelCelebration:
			c.sess.celebration = nil
		case domain.EffectStartExit:
			c.startExit(now)
		case domain.EffectUnmount:
			c.unmount(ctx)
			push = false
		case domain.EffectEndSession:
			c.sess.release()
			c.sess = nil
		}
	}

	if push && c.sess != nil {
		c.sess.view.Phase = next
		c.update(ctx)
	}
	c.phase.Store(int32(next))
	return true
}

func (c *Controller) mount(ctx context.Context, origin domain.Rect, now time.Time) {
	c.nextID++
	s := newSession(c.runCtx, c.nextID)
	s.origin = origin
	s.target = domain.Centered(c.page.Viewport(), c.config.BlockSize)
	s.ticker = c.clock.Ticker(c.config.FrameInterval)
	s.onRelease(s.ticker.Stop)
	s.view = domain.View{
		Session:  s.id,
		Phase:    domain.Entering,
		Block:    domain.NewRectTween(origin, s.target, now, c.config.FlyIn, anim.OutCubic),
		Shadow:   anim.NewTween(0, c.config.ShadowOpacity, now, c.config.FlyIn, anim.OutQuad),
		Content:  domain.ContentHidden,
		Alpha:    anim.Static(1),
		Emphasis: anim.Static(1),
		Status:   string(mempoolDomain.StateConnecting),
	}
	c.sess = s

	c.metrics.sessions.Add(ctx, 1)
	c.logger.Info(ctx, "overlay opened", "session", s.id)
	if err := c.renderer.Mount(ctx, s.view); err != nil {
		c.renderFailed(ctx, "mount", err)
	}
}

func (c *Controller) unmount(ctx context.Context) {
	if err := c.renderer.Unmount(ctx); err != nil {
		c.renderFailed(ctx, "unmount", err)
	}
	c.logger.Info(ctx, "overlay closed", "session", c.sess.id)
}

func (c *Controller) update(ctx context.Context) {
	if err := c.renderer.Update(ctx, c.sess.view); err != nil {
		c.renderFailed(ctx, "update", err)
	}
}

func (c *Controller) renderFailed(ctx context.Context, op string, err error) {
	c.metrics.renderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	err = apperror.Wrap(err, apperror.CodeRenderFailed, op)
	c.logger.Error(ctx, "overlay render failed", "op", op, "error", err, "code", apperror.GetCode(err))
}

func (c *Controller) startFeed(ctx context.Context) {
	s := c.sess
	s.feed = c.feeds.NewFeed(mempoolApp.Callbacks{
		OnSnapshot: func(snap mempoolDomain.BlockSnapshot) {
			c.postFrom(s, event{kind: evSnapshot, snapshot: snap})
		},
		OnNewBlock: func(height int64) {
			c.postFrom(s, event{kind: evNewBlock, height: height})
		},
		OnStatus: func(st mempoolDomain.Status) {
			// Status is advisory and may be reported from the Run goroutine itself.
			select {
			case c.events <- event{kind: evStatus, ctx: s.ctx, session: s.id, status: st}:
			default:
			}
		},
	})
	s.onRelease(s.feed.Stop)

	if err := s.feed.Start(s.ctx); err != nil {
		c.logger.Warn(ctx, "feed start failed", "error", err, "code", apperror.GetCode(err))
	}
	if !c.visible {
		s.feed.Pause()
	}
}

// showContent paints the latest snapshot with the entrance stagger, or the placeholder.
func (c *Controller) showContent(now time.Time) {
	s := c.sess
	s.view.Alpha = anim.Static(1)
	s.view.Emphasis = anim.Static(1)

	snap, ok := s.feed.LastSnapshot()
	if !ok {
		s.view.Content = domain.ContentPlaceholder
		s.view.Label = domain.PlaceholderGlyph
		s.view.Lines = nil
		s.view.Fullness = -1
		s.view.Alpha = anim.NewTween(0, 1, now, c.config.StaggerLine, anim.OutQuad)
		return
	}
	c.paintSnapshot(snap)
	c.stagger(now)
}

func (c *Controller) paintSnapshot(snap mempoolDomain.BlockSnapshot) {
	s := c.sess
	s.view.Content = domain.ContentSnapshot
	s.view.Lines = snap.Lines()
	s.view.Label = ""
	s.view.Fullness = snap.Fullness
	s.shown = snap
	s.hasShown = true
}

func (c *Controller) stagger(now time.Time) {
	c.sess.staggered = true
	c.sess.view.Stagger = domain.Stagger{Start: now, Step: c.config.StaggerStep, Line: c.config.StaggerLine}
}

func (c *Controller) onSnapshot(ctx context.Context, snap mempoolDomain.BlockSnapshot) {
	s := c.sess
	switch c.Phase() {
	case domain.Idle:
	case domain.Entering:
		// Picked up from the feed when the entry settles.
		return
	default:
		c.drop(ctx, "not_idle")
		return
	}

	now := c.clock.Now()
	beat := s.hasShown && snap.Pulses(s.shown)
	c.paintSnapshot(snap)
	s.view.Alpha = anim.Static(1)
	if !s.staggered {
		c.stagger(now)
	}
	if beat {
		s.view.Heartbeat = anim.Bump{Start: now, Duration: c.config.Heartbeat, Peak: c.config.HeartbeatPeak}
	}
	c.update(ctx)
}

func (c *Controller) onNewBlock(ctx context.Context, height int64) {
	if !c.fire(ctx, domain.EventNewBlock, transitionArgs{height: height}) {
		c.drop(ctx, "celebration_not_idle")
		c.logger.Debug(ctx, "new block outside idle", "height", height, "phase", c.Phase())
		return
	}
	c.logger.Info(ctx, "celebrating new block", "height", height)
}

func (c *Controller) onStatus(ctx context.Context, st mempoolDomain.Status) {
	label := statusLabel(st)
	if c.sess.view.Status == label {
		return
	}
	c.sess.view.Status = label
	c.update(ctx)
}

func statusLabel(st mempoolDomain.Status) string {
	switch {
	case st.State == mempoolDomain.StatePaused:
		return string(st.State)
	case st.Polling():
		return "polling"
	default:
		return string(st.State)
	}
}

// advance moves timed phases forward on a frame tick.
func (c *Controller) advance(ctx context.Context) {
	if c.sess == nil {
		return
	}
	now := c.clock.Now()
	switch c.Phase() {
	case domain.Entering:
		if c.sess.view.Block.Done(now) {
			c.fire(ctx, domain.EventEntryDone, transitionArgs{})
		}
	case domain.Celebrating:
		if c.applyCues(now) {
			c.fire(ctx, domain.EventCelebrationDone, transitionArgs{})
			return
		}
		c.update(ctx)
	case domain.Exiting:
		if c.sess.view.Block.Done(now) {
			c.fire(ctx, domain.EventExitDone, transitionArgs{})
		}
	}
}

func (c *Controller) startExit(now time.Time) {
	s := c.sess
	dest, ok := c.page.OriginRect()
	if !ok || dest.Empty() {
		dest = s.origin
	}
	s.view.Block = s.view.Block.Retarget(dest, now, c.config.FlyOut, anim.InQuad)
	s.view.Shadow = s.view.Shadow.Retarget(0, now, c.config.FlyOut, anim.InQuad)
	s.view.Alpha = s.view.Alpha.Retarget(0, now, c.config.FlyOut/2, anim.OutQuad)
	s.view.Heartbeat = anim.Bump{}
}

func (c *Controller) relayout(ctx context.Context) {
	if c.sess == nil {
		return
	}
	s := c.sess
	s.target = domain.Centered(c.page.Viewport(), c.config.BlockSize)
	if c.Phase() != domain.Idle {
		return
	}
	s.view.Block = domain.StaticRect(s.target)
	c.update(ctx)
}

func (c *Controller) teardown() {
	if c.sess == nil {
		return
	}
	ctx := context.Background()
	c.sess.release()
	c.unmount(ctx)
	c.sess = nil
	c.phase.Store(int32(domain.Closed))
}
