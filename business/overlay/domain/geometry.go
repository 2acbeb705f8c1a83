package domain

import (
	"math"
	"time"

	"github.com/fd1az/mempool-block/internal/anim"
)

// Rect is an axis-aligned rectangle in terminal cells.
type Rect struct {
	X, Y, W, H float64
}

// Size is a width and height in cells.
type Size struct {
	W, H float64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Lerp interpolates every edge of r toward to.
func (r Rect) Lerp(to Rect, t float64) Rect {
	return Rect{
		X: anim.Lerp(r.X, to.X, t),
		Y: anim.Lerp(r.Y, to.Y, t),
		W: anim.Lerp(r.W, to.W, t),
		H: anim.Lerp(r.H, to.H, t),
	}
}

// Offset moves r by dx, dy.
func (r Rect) Offset(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Scale grows r around its center by f.
func (r Rect) Scale(f float64) Rect {
	w, h := r.W*f, r.H*f
	return Rect{X: r.X - (w-r.W)/2, Y: r.Y - (h-r.H)/2, W: w, H: h}
}

// Round snaps r to whole cells.
func (r Rect) Round() Rect {
	return Rect{X: math.Round(r.X), Y: math.Round(r.Y), W: math.Round(r.W), H: math.Round(r.H)}
}

// Centered returns a rect of size s centered in viewport, clamped to fit.
func Centered(viewport, s Size) Rect {
	w := math.Min(s.W, viewport.W)
	h := math.Min(s.H, viewport.H)
	return Rect{
		X: math.Floor((viewport.W - w) / 2),
		Y: math.Floor((viewport.H - h) / 2),
		W: w,
		H: h,
	}
}

// RectTween animates a rectangle between two endpoints.
type RectTween struct {
	From     Rect
	To       Rect
	Start    time.Time
	Duration time.Duration
	Ease     anim.Ease
}

// StaticRect holds r in place.
func StaticRect(r Rect) RectTween {
	return RectTween{From: r, To: r}
}

// NewRectTween starts a tween at start.
func NewRectTween(from, to Rect, start time.Time, d time.Duration, ease anim.Ease) RectTween {
	return RectTween{From: from, To: to, Start: start, Duration: d, Ease: ease}
}

func (t RectTween) progress() anim.Tween {
	return anim.NewTween(0, 1, t.Start, t.Duration, t.Ease)
}

// At returns the rect at now.
func (t RectTween) At(now time.Time) Rect {
	return t.From.Lerp(t.To, t.progress().At(now))
}

// Done reports whether the tween has reached To.
func (t RectTween) Done(now time.Time) bool {
	return t.progress().Done(now)
}

// End returns the instant the tween completes.
func (t RectTween) End() time.Time {
	return t.Start.Add(t.Duration)
}

// Retarget starts a new tween from the current rect at now.
func (t RectTween) Retarget(to Rect, now time.Time, d time.Duration, ease anim.Ease) RectTween {
	return NewRectTween(t.At(now), to, now, d, ease)
}
