package domain

import "math"

// Point is a position in CSS-like pixels.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

// SwipeConfig holds the gesture thresholds.
type SwipeConfig struct {
	MinDistance      float64
	AngleMin         float64
	AngleMax         float64
	ZoneExtend       float64
	SuppressMinDY    float64
	MaxViewportWidth float64
}

// DefaultSwipeConfig returns the down-right swipe thresholds.
func DefaultSwipeConfig() SwipeConfig {
	return SwipeConfig{
		MinDistance:      30,
		AngleMin:         10,
		AngleMax:         80,
		ZoneExtend:       60,
		SuppressMinDY:    5,
		MaxViewportWidth: 768,
	}
}

// SwipeDetector recognizes a down-right diagonal swipe starting on the origin element.
type SwipeDetector struct {
	cfg   SwipeConfig
	start Point
	armed bool
}

// NewSwipeDetector creates a detector.
func NewSwipeDetector(cfg SwipeConfig) *SwipeDetector {
	return &SwipeDetector{cfg: cfg}
}

// InHitZone reports whether p lies in origin extended right and down by the zone margin.
func (d *SwipeDetector) InHitZone(p Point, origin Rect) bool {
	return p.X >= origin.X && p.X <= origin.X+origin.W+d.cfg.ZoneExtend &&
		p.Y >= origin.Y && p.Y <= origin.Y+origin.H+d.cfg.ZoneExtend
}

func (d *SwipeDetector) narrow(viewportWidth float64) bool {
	return viewportWidth <= d.cfg.MaxViewportWidth
}

// Start arms the detector when the viewport is narrow and p is in the hit zone.
func (d *SwipeDetector) Start(p Point, origin Rect, viewportWidth float64) bool {
	d.armed = false
	if !d.narrow(viewportWidth) || !d.InHitZone(p, origin) {
		return false
	}
	d.start = p
	d.armed = true
	return true
}

// Move reports whether default handling of the move should be suppressed.
func (d *SwipeDetector) Move(p Point) bool {
	if !d.armed {
		return false
	}
	dx, dy := p.X-d.start.X, p.Y-d.start.Y
	return d.inWindow(angle(dx, dy)) && dy > d.cfg.SuppressMinDY
}

// End disarms the detector and reports whether the gesture is an activation.
func (d *SwipeDetector) End(p Point, viewportWidth float64) bool {
	if !d.armed {
		return false
	}
	d.armed = false
	if !d.narrow(viewportWidth) {
		return false
	}

	dx, dy := p.X-d.start.X, p.Y-d.start.Y
	if math.Hypot(dx, dy) < d.cfg.MinDistance {
		return false
	}
	return d.inWindow(angle(dx, dy))
}

// Cancel disarms without firing.
func (d *SwipeDetector) Cancel() {
	d.armed = false
}

// Armed reports whether a gesture is being tracked.
func (d *SwipeDetector) Armed() bool {
	return d.armed
}

func (d *SwipeDetector) inWindow(deg float64) bool {
	return deg >= d.cfg.AngleMin && deg <= d.cfg.AngleMax
}

// angle is measured clockwise from +X with Y pointing down, in degrees.
func angle(dx, dy float64) float64 {
	return math.Atan2(dy, dx) * 180 / math.Pi
}
