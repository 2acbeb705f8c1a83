package app

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/mempool-block/business/trigger/domain"
	"github.com/fd1az/mempool-block/internal/logger"
)

const meterName = "trigger"

// SwipePulse is the haptic confirmation of a swipe activation.
const SwipePulse = 15 * time.Millisecond

// Config configures the detector.
type Config struct {
	Keyword     string
	IdleTimeout time.Duration
	Swipe       domain.SwipeConfig
}

// Detector turns keystrokes and touch gestures into overlay activations.
type Detector struct {
	activator Activator
	haptics   Haptics
	page      Page
	clock     clock.Clock
	logger    logger.LoggerInterface

	activations metric.Int64Counter

	mu      sync.Mutex
	keyword *domain.KeywordMatcher
	swipe   *domain.SwipeDetector
}

// NewDetector creates a detector. haptics may be nil.
func NewDetector(cfg Config, act Activator, haptics Haptics, page Page, clk clock.Clock, log logger.LoggerInterface) *Detector {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = time.Second
	}

	activations, _ := otel.Meter(meterName).Int64Counter("trigger_activations_total",
		metric.WithDescription("Overlay activations, by gesture"))

	return &Detector{
		activator:   act,
		haptics:     haptics,
		page:        page,
		clock:       clk,
		logger:      log,
		activations: activations,
		keyword:     domain.NewKeywordMatcher(cfg.Keyword, cfg.IdleTimeout),
		swipe:       domain.NewSwipeDetector(cfg.Swipe),
	}
}

// OnKeystroke feeds one character typed on the page.
// Keys are ignored while an input has focus or the help modal is open.
func (d *Detector) OnKeystroke(ctx context.Context, r rune) {
	if d.page.TextInputFocused() || d.page.HelpOpen() {
		return
	}

	d.mu.Lock()
	fired := d.keyword.Feed(r, d.clock.Now())
	d.mu.Unlock()

	if fired {
		d.fire(ctx, "keyword")
	}
}

// OnTouchStart begins tracking a gesture if it starts on the origin element.
func (d *Detector) OnTouchStart(p domain.Point) {
	origin, ok := d.page.OriginRect()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !ok {
		d.swipe.Cancel()
		return
	}
	d.swipe.Start(p, origin, d.page.ViewportWidth())
}

// OnTouchMove reports whether the page should suppress its default handling of the move.
func (d *Detector) OnTouchMove(p domain.Point) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.swipe.Move(p)
}

// OnTouchEnd completes a gesture, activating on a qualifying swipe.
func (d *Detector) OnTouchEnd(ctx context.Context, p domain.Point) {
	d.mu.Lock()
	fired := d.swipe.End(p, d.page.ViewportWidth())
	d.mu.Unlock()

	if !fired {
		return
	}
	if d.haptics != nil {
		d.haptics.Vibrate(SwipePulse)
	}
	d.fire(ctx, "swipe")
}

// OnTouchCancel drops the gesture in progress.
func (d *Detector) OnTouchCancel() {
	d.mu.Lock()
	d.swipe.Cancel()
	d.mu.Unlock()
}

func (d *Detector) fire(ctx context.Context, gesture string) {
	d.activations.Add(ctx, 1, metric.WithAttributes(attribute.String("gesture", gesture)))
	d.logger.Debug(ctx, "activation gesture recognized", "gesture", gesture)
	d.activator.Activate(ctx)
}
