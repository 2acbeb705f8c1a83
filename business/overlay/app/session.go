package app

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	mempoolDomain "github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/business/overlay/domain"
)

// session is one open-to-closed overlay activation. Everything it holds is
// released through a single cancel; handles register on ctx with context.AfterFunc.
type session struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc

	origin domain.Rect
	target domain.Rect
	view   domain.View

	feed        Feed
	ticker      *clock.Ticker
	celebration *domain.Celebration

	shown     mempoolDomain.BlockSnapshot
	hasShown  bool
	staggered bool
}

func newSession(parent context.Context, id uint64) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{id: id, ctx: ctx, cancel: cancel}
}

// onRelease runs fn once the session ends.
func (s *session) onRelease(fn func()) {
	context.AfterFunc(s.ctx, fn)
}

// live reports whether the session has not been released.
func (s *session) live() bool {
	return s.ctx.Err() == nil
}

// release ends the session. Safe to call more than once.
func (s *session) release() {
	s.cancel()
}

func (s *session) ticks() <-chan time.Time {
	if s == nil || s.ticker == nil {
		return nil
	}
	return s.ticker.C
}
