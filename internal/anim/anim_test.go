package anim

import (
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEasingEndpoints(t *testing.T) {
	eases := map[string]Ease{
		"linear":    Linear,
		"inQuad":    InQuad,
		"outQuad":   OutQuad,
		"inOutQuad": InOutQuad,
		"inCubic":   InCubic,
		"outCubic":  OutCubic,
		"inOutSine": InOutSine,
		"outBack":   OutBack,
	}
	for name, e := range eases {
		if !approx(e(0), 0) || !approx(e(1), 1) {
			t.Errorf("%s: e(0)=%v e(1)=%v", name, e(0), e(1))
		}
	}
	if OutBack(0.7) <= 1 {
		t.Errorf("outBack should overshoot, got %v", OutBack(0.7))
	}
}

func TestTween(t *testing.T) {
	start := time.Unix(1000, 0)
	tw := NewTween(0, 100, start, 400*time.Millisecond, Linear)

	tests := []struct {
		at   time.Duration
		want float64
		done bool
	}{
		{-time.Second, 0, false},
		{0, 0, false},
		{100 * time.Millisecond, 25, false},
		{400 * time.Millisecond, 100, true},
		{time.Second, 100, true},
	}
	for _, tt := range tests {
		now := start.Add(tt.at)
		if got := tw.At(now); !approx(got, tt.want) {
			t.Errorf("At(+%v) = %v, want %v", tt.at, got, tt.want)
		}
		if tw.Done(now) != tt.done {
			t.Errorf("Done(+%v) = %v", tt.at, !tt.done)
		}
	}

	if Static(0.75).At(start) != 0.75 {
		t.Error("static tween")
	}

	re := tw.Retarget(0, start.Add(200*time.Millisecond), 100*time.Millisecond, Linear)
	if !approx(re.From, 50) || re.To != 0 {
		t.Errorf("retarget from %v to %v", re.From, re.To)
	}
}

func TestPulse_PauseResume(t *testing.T) {
	start := time.Unix(0, 0)
	p := StartPulse(time.Second, 0.88, start)

	if !approx(p.At(start), 1) {
		t.Errorf("pulse starts at full brightness, got %v", p.At(start))
	}
	if !approx(p.At(start.Add(time.Second)), 0.88) {
		t.Errorf("after one leg = %v", p.At(start.Add(time.Second)))
	}
	if !approx(p.At(start.Add(2*time.Second)), 1) {
		t.Errorf("alternates back = %v", p.At(start.Add(2*time.Second)))
	}

	mid := start.Add(500 * time.Millisecond)
	frozen := p.At(mid)
	paused := p.Pause(mid)
	if paused.Running() {
		t.Error("paused pulse reports running")
	}
	if !approx(paused.At(mid.Add(10*time.Second)), frozen) {
		t.Error("paused pulse must hold its value")
	}

	resumeAt := mid.Add(10 * time.Second)
	resumed := paused.Resume(resumeAt)
	if !resumed.Running() {
		t.Error("resumed pulse not running")
	}
	if !approx(resumed.At(resumeAt), frozen) {
		t.Errorf("resume continues from pause point: %v vs %v", resumed.At(resumeAt), frozen)
	}

	var zero Pulse
	if zero.At(start) != 1 || zero.Running() {
		t.Error("zero pulse is stopped at 1")
	}
}

func TestBump(t *testing.T) {
	start := time.Unix(0, 0)
	b := Bump{Start: start, Duration: 300 * time.Millisecond, Peak: 0.05}

	if b.At(start) != 1 || b.At(start.Add(300*time.Millisecond)) != 1 {
		t.Error("bump is 1 at its edges")
	}
	if !approx(b.At(start.Add(150*time.Millisecond)), 1.05) {
		t.Errorf("bump peak = %v", b.At(start.Add(150*time.Millisecond)))
	}
	if (Bump{}).At(start) != 1 {
		t.Error("zero bump")
	}
}
