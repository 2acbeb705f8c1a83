package anim

import (
	"math"
	"time"
)

// Tween animates a scalar from From to To starting at Start.
type Tween struct {
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
	Ease     Ease
}

// Static returns a tween that always evaluates to v.
func Static(v float64) Tween {
	return Tween{From: v, To: v}
}

// NewTween starts a tween at start.
func NewTween(from, to float64, start time.Time, d time.Duration, ease Ease) Tween {
	return Tween{From: from, To: to, Start: start, Duration: d, Ease: ease}
}

// Progress returns eased progress at now.
func (t Tween) Progress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := clamp01(float64(now.Sub(t.Start)) / float64(t.Duration))
	if t.Ease == nil {
		return p
	}
	return t.Ease(p)
}

// At returns the value at now.
func (t Tween) At(now time.Time) float64 {
	return Lerp(t.From, t.To, t.Progress(now))
}

// Done reports whether the tween has reached its end at now.
func (t Tween) Done(now time.Time) bool {
	return t.Duration <= 0 || !now.Before(t.Start.Add(t.Duration))
}

// Retarget starts a new tween from the current value at now.
func (t Tween) Retarget(to float64, now time.Time, d time.Duration, ease Ease) Tween {
	return NewTween(t.At(now), to, now, d, ease)
}

// Bump is a one-shot excursion that returns to 1, used for heartbeat scaling.
type Bump struct {
	Start    time.Time
	Duration time.Duration
	Peak     float64
}

// At returns the scale factor at now: 1 outside the window.
func (b Bump) At(now time.Time) float64 {
	if b.Duration <= 0 || b.Start.IsZero() {
		return 1
	}
	p := float64(now.Sub(b.Start)) / float64(b.Duration)
	if p <= 0 || p >= 1 {
		return 1
	}
	return 1 + b.Peak*math.Sin(math.Pi*p)
}
