package domain

import (
	"testing"
	"time"
)

func TestKeywordMatcher(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	step := 100 * time.Millisecond

	tests := []struct {
		name  string
		keys  string
		gaps  []time.Duration // gap before key i; missing entries use step
		fires []int           // key indexes that must fire
	}{
		{name: "exact word", keys: "block", fires: []int{4}},
		{name: "uppercase", keys: "BLOCK", fires: []int{4}},
		{name: "suffix of longer input", keys: "xyzblock", fires: []int{7}},
		{name: "non-letters ignored", keys: "bl-o1c k", fires: []int{7}},
		{name: "idle gap resets", keys: "block", gaps: []time.Duration{0, step, 1500 * time.Millisecond}},
		{name: "gap at one second exactly keeps buffer", keys: "block", gaps: []time.Duration{0, time.Second, time.Second, time.Second, time.Second}, fires: []int{4}},
		{name: "fires twice", keys: "blockblock", fires: []int{4, 9}},
		{name: "no match", keys: "blocc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewKeywordMatcher("block", time.Second)
			now := t0
			want := make(map[int]bool)
			for _, i := range tt.fires {
				want[i] = true
			}
			for i, r := range []rune(tt.keys) {
				gap := step
				if i < len(tt.gaps) {
					gap = tt.gaps[i]
				}
				now = now.Add(gap)
				if got := m.Feed(r, now); got != want[i] {
					t.Fatalf("key %d (%q): fired = %v, want %v (buffer %q)", i, r, got, want[i], m.Buffer())
				}
			}
		})
	}
}

func TestKeywordMatcher_ClearsAfterMatch(t *testing.T) {
	m := NewKeywordMatcher("block", time.Second)
	now := time.Now()
	for _, r := range "block" {
		m.Feed(r, now)
	}
	if m.Buffer() != "" {
		t.Errorf("buffer = %q after match", m.Buffer())
	}
}

func TestSwipeDetector(t *testing.T) {
	origin := Rect{X: 16, Y: 16, W: 40, H: 40}
	narrow := 400.0

	tests := []struct {
		name     string
		start    Point
		end      Point
		viewport float64
		armed    bool
		fires    bool
	}{
		{"diagonal down-right", Point{30, 30}, Point{70, 70}, narrow, true, true},
		{"start in extended zone", Point{110, 110}, Point{150, 140}, narrow, true, true},
		{"start outside zone", Point{130, 30}, Point{170, 70}, narrow, false, false},
		{"start left of origin", Point{10, 30}, Point{50, 70}, narrow, false, false},
		{"wide viewport", Point{30, 30}, Point{70, 70}, 1024, false, false},
		{"too short", Point{30, 30}, Point{45, 45}, narrow, true, false},
		{"horizontal", Point{30, 30}, Point{90, 31}, narrow, true, false},
		{"vertical", Point{30, 30}, Point{31, 90}, narrow, true, false},
		{"up-right", Point{30, 60}, Point{70, 20}, narrow, true, false},
		{"boundary 768 is narrow", Point{30, 30}, Point{70, 70}, 768, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewSwipeDetector(DefaultSwipeConfig())
			if got := d.Start(tt.start, origin, tt.viewport); got != tt.armed {
				t.Fatalf("Start = %v, want %v", got, tt.armed)
			}
			if got := d.End(tt.end, tt.viewport); got != tt.fires {
				t.Errorf("End = %v, want %v", got, tt.fires)
			}
			if d.Armed() {
				t.Error("detector must disarm on End")
			}
		})
	}
}

func TestSwipeDetector_MoveSuppression(t *testing.T) {
	d := NewSwipeDetector(DefaultSwipeConfig())
	d.Start(Point{20, 20}, Rect{X: 16, Y: 16, W: 40, H: 40}, 400)

	if !d.Move(Point{30, 30}) {
		t.Error("diagonal move with dy > 5 should suppress")
	}
	if d.Move(Point{23, 23}) {
		t.Error("dy = 3 should not suppress")
	}
	if d.Move(Point{60, 21}) {
		t.Error("near-horizontal move should not suppress")
	}
}

func TestSwipeDetector_Cancel(t *testing.T) {
	d := NewSwipeDetector(DefaultSwipeConfig())
	d.Start(Point{20, 20}, Rect{X: 16, Y: 16, W: 40, H: 40}, 400)
	d.Cancel()

	if d.End(Point{80, 80}, 400) {
		t.Error("cancelled gesture must not fire")
	}
}
