// Package anim evaluates time-based tweens and loops at a frame instant.
// Values are immutable and sampled by the renderer on every frame.
package anim

import "math"

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

func InQuad(t float64) float64 { return t * t }

func OutQuad(t float64) float64 { return 1 - (1-t)*(1-t) }

func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

func InCubic(t float64) float64 { return t * t * t }

func OutCubic(t float64) float64 { return 1 - math.Pow(1-t, 3) }

func InOutSine(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 }

// OutBack overshoots slightly past 1 before settling.
func OutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
