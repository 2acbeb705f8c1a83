package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/business/trigger/domain"
	"github.com/fd1az/mempool-block/internal/logger"
)

type fakeActivator struct{ count int }

func (a *fakeActivator) Activate(context.Context) { a.count++ }

type fakeHaptics struct{ patterns [][]time.Duration }

func (h *fakeHaptics) Vibrate(p ...time.Duration) { h.patterns = append(h.patterns, p) }

type fakePage struct {
	origin   domain.Rect
	hasRect  bool
	width    float64
	focused  bool
	helpOpen bool
}

func (p *fakePage) OriginRect() (domain.Rect, bool) { return p.origin, p.hasRect }
func (p *fakePage) ViewportWidth() float64          { return p.width }
func (p *fakePage) TextInputFocused() bool          { return p.focused }
func (p *fakePage) HelpOpen() bool                  { return p.helpOpen }

func newDetector(page *fakePage) (*Detector, *fakeActivator, *fakeHaptics, *clock.Mock) {
	act := &fakeActivator{}
	hap := &fakeHaptics{}
	mock := clock.NewMock()
	cfg := Config{Keyword: "block", IdleTimeout: time.Second, Swipe: domain.DefaultSwipeConfig()}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewDetector(cfg, act, hap, page, mock, log), act, hap, mock
}

func typeWord(d *Detector, mock *clock.Mock, word string) {
	for _, r := range word {
		mock.Add(100 * time.Millisecond)
		d.OnKeystroke(context.Background(), r)
	}
}

func TestDetector_Keyword(t *testing.T) {
	tests := []struct {
		name  string
		page  fakePage
		fires int
	}{
		{"plain page", fakePage{}, 1},
		{"input focused", fakePage{focused: true}, 0},
		{"help open", fakePage{helpOpen: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := tt.page
			d, act, _, mock := newDetector(&page)
			typeWord(d, mock, "block")
			if act.count != tt.fires {
				t.Errorf("activations = %d, want %d", act.count, tt.fires)
			}
		})
	}
}

func TestDetector_KeywordIdleReset(t *testing.T) {
	d, act, _, mock := newDetector(&fakePage{})
	typeWord(d, mock, "blo")
	mock.Add(2 * time.Second)
	typeWord(d, mock, "ck")
	if act.count != 0 {
		t.Errorf("activations = %d after idle gap", act.count)
	}
}

func TestDetector_Swipe(t *testing.T) {
	page := &fakePage{origin: domain.Rect{X: 16, Y: 16, W: 48, H: 48}, hasRect: true, width: 640}
	d, act, hap, _ := newDetector(page)

	d.OnTouchStart(domain.Point{X: 30, Y: 30})
	if !d.OnTouchMove(domain.Point{X: 45, Y: 45}) {
		t.Error("diagonal move should be suppressed")
	}
	d.OnTouchEnd(context.Background(), domain.Point{X: 80, Y: 75})

	if act.count != 1 {
		t.Fatalf("activations = %d", act.count)
	}
	if len(hap.patterns) != 1 || hap.patterns[0][0] != SwipePulse {
		t.Errorf("haptics = %v", hap.patterns)
	}
}

func TestDetector_SwipeNeedsOrigin(t *testing.T) {
	page := &fakePage{width: 640}
	d, act, _, _ := newDetector(page)

	d.OnTouchStart(domain.Point{X: 30, Y: 30})
	d.OnTouchEnd(context.Background(), domain.Point{X: 80, Y: 80})
	if act.count != 0 {
		t.Errorf("activations = %d without origin", act.count)
	}
}

func TestDetector_SwipeCancel(t *testing.T) {
	page := &fakePage{origin: domain.Rect{X: 16, Y: 16, W: 48, H: 48}, hasRect: true, width: 640}
	d, act, _, _ := newDetector(page)

	d.OnTouchStart(domain.Point{X: 30, Y: 30})
	d.OnTouchCancel()
	d.OnTouchEnd(context.Background(), domain.Point{X: 80, Y: 80})
	if act.count != 0 {
		t.Errorf("activations = %d after cancel", act.count)
	}
}
