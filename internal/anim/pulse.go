package anim

import (
	"math"
	"time"
)

// Pulse is an alternating loop between 1 and Low, one direction per Period.
// The zero value is stopped and evaluates to 1.
type Pulse struct {
	Period time.Duration
	Low    float64

	started  bool
	origin   time.Time
	paused   bool
	pausedAt time.Time
}

// StartPulse begins a loop at now.
func StartPulse(period time.Duration, low float64, now time.Time) Pulse {
	return Pulse{Period: period, Low: low, started: true, origin: now}
}

// Running reports whether the loop is started and not paused.
func (p Pulse) Running() bool {
	return p.started && !p.paused
}

// Started reports whether the loop has been started.
func (p Pulse) Started() bool {
	return p.started
}

// Pause freezes the loop at now. Pausing twice keeps the first instant.
func (p Pulse) Pause(now time.Time) Pulse {
	if !p.started || p.paused {
		return p
	}
	p.paused = true
	p.pausedAt = now
	return p
}

// Resume continues from where the loop was paused.
func (p Pulse) Resume(now time.Time) Pulse {
	if !p.started || !p.paused {
		return p
	}
	p.origin = p.origin.Add(now.Sub(p.pausedAt))
	p.paused = false
	p.pausedAt = time.Time{}
	return p
}

// At returns the brightness factor at now.
func (p Pulse) At(now time.Time) float64 {
	if !p.started || p.Period <= 0 {
		return 1
	}
	if p.paused {
		now = p.pausedAt
	}

	elapsed := now.Sub(p.origin)
	if elapsed < 0 {
		return 1
	}
	cycles := float64(elapsed) / float64(p.Period)
	leg := int(math.Floor(cycles))
	t := InOutSine(cycles - float64(leg))
	if leg%2 == 1 {
		t = 1 - t
	}
	return Lerp(1, p.Low, t)
}
