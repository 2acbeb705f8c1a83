package app

import (
	"time"

	mempoolDomain "github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/business/overlay/domain"
	"github.com/fd1az/mempool-block/internal/anim"
)

// applyCues applies every choreography beat due at now and reports whether the run finished.
// Each beat starts at its scheduled offset, so tweens stay on the timeline even when a tick is late.
func (c *Controller) applyCues(now time.Time) bool {
	s := c.sess
	cel := s.celebration
	if cel == nil {
		return false
	}

	timing := c.config.Celebration
	for _, step := range cel.Due(now) {
		at := cel.Start.Add(step.At)
		v := &s.view

		switch step.Cue {
		case domain.CueFadeOut:
			v.Alpha = v.Alpha.Retarget(0, at, timing.FadeOut, anim.OutQuad)
			v.Heartbeat = anim.Bump{}

		case domain.CueShowHeight:
			v.Content = domain.ContentHeight
			v.Label = mempoolDomain.HeightLabel(cel.Height)
			v.Lines = nil
			v.Stagger = domain.Stagger{}
			v.Alpha = anim.Static(1)
			v.Emphasis = anim.NewTween(0, 1, at, timing.Emphasis, anim.OutBack)

		case domain.CueNudge:
			rest := v.Block.To
			v.Block = domain.NewRectTween(rest, rest.Offset(-c.config.NudgeCells, 0), at, timing.Nudge, anim.InQuad)

		case domain.CueSlideOff:
			from := v.Block.To
			off := from
			off.X = c.page.Viewport().W + 1
			v.Block = domain.NewRectTween(from, off, at, timing.SlideOff, anim.InCubic)
			v.Shadow = anim.NewTween(c.config.ShadowOpacity, 0, at, timing.SlideOff, anim.InCubic)

		case domain.CueOffscreen:
			v.Content = domain.ContentHidden
			v.Label = ""
			v.Emphasis = anim.Static(1)
			v.Shadow = anim.Static(c.config.ShadowOpacity)
			v.Block = domain.StaticRect(offLeft(s.target))

		case domain.CueReenter:
			v.Block = domain.NewRectTween(offLeft(s.target), s.target, at, timing.Reenter, anim.OutQuad)

		case domain.CueDone:
			v.Block = domain.StaticRect(s.target)
			s.celebration = nil
			return true
		}
	}
	return false
}

func offLeft(target domain.Rect) domain.Rect {
	r := target
	r.X = -target.W - 1
	return r
}
