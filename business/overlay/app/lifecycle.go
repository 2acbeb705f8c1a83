package app

import (
	"context"

	"github.com/fd1az/mempool-block/business/overlay/domain"
)

// SetVisible reports a page visibility change.
// While the overlay is open a hidden page closes the feed connection and freezes the pulse;
// showing it again reconnects and resumes. The phase is left alone either way.
func (c *Controller) SetVisible(ctx context.Context, visible bool) {
	c.post(event{kind: evVisibility, ctx: ctx, visible: visible})
}

func (c *Controller) setVisible(ctx context.Context, visible bool) {
	if c.visible == visible {
		return
	}
	c.visible = visible

	s := c.sess
	phase := c.Phase()
	if s == nil || !s.live() || s.feed == nil || phase == domain.Exiting {
		return
	}

	now := c.clock.Now()
	if visible {
		s.feed.Resume()
		if phase != domain.Celebrating {
			s.view.Pulse = s.view.Pulse.Resume(now)
		}
		c.logger.Debug(ctx, "page visible, overlay resumed", "session", s.id)
	} else {
		s.feed.Pause()
		s.view.Pulse = s.view.Pulse.Pause(now)
		c.logger.Debug(ctx, "page hidden, overlay paused", "session", s.id)
	}
	c.update(ctx)
}
