package domain

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/fd1az/mempool-block/internal/anim"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    Phase
		event   Event
		to      Phase
		ok      bool
		effects []Effect
	}{
		{Closed, EventActivate, Entering, true, []Effect{EffectMount, EffectStartFeed}},
		{Entering, EventEntryDone, Idle, true, []Effect{EffectShowContent, EffectStartPulse}},
		{Idle, EventNewBlock, Celebrating, true, []Effect{EffectSuppressFeed, EffectPausePulse, EffectHaptics, EffectPlayCelebration}},
		{Celebrating, EventCelebrationDone, Idle, true, []Effect{EffectReleaseFeed, EffectShowContent, EffectResumePulse}},
		{Idle, EventDismiss, Exiting, true, dismissEffects},
		{Entering, EventDismiss, Exiting, true, dismissEffects},
		{Celebrating, EventDismiss, Exiting, true, dismissEffects},
		{Exiting, EventExitDone, Closed, true, []Effect{EffectUnmount, EffectEndSession}},

		{Entering, EventActivate, Entering, false, nil},
		{Idle, EventActivate, Idle, false, nil},
		{Exiting, EventActivate, Exiting, false, nil},
		{Entering, EventNewBlock, Entering, false, nil},
		{Celebrating, EventNewBlock, Celebrating, false, nil},
		{Exiting, EventDismiss, Exiting, false, nil},
		{Closed, EventDismiss, Closed, false, nil},
		{Closed, EventExitDone, Closed, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.event.String(), func(t *testing.T) {
			to, effects, ok := Transition(tt.from, tt.event)
			if ok != tt.ok || to != tt.to {
				t.Fatalf("Transition = %v, %v; want %v, %v", to, ok, tt.to, tt.ok)
			}
			if !slices.Equal(effects, tt.effects) {
				t.Errorf("effects = %v, want %v", effects, tt.effects)
			}
		})
	}
}

func TestTransition_EffectsAreCopies(t *testing.T) {
	_, a, _ := Transition(Idle, EventDismiss)
	a[0] = EffectUnmount
	_, b, _ := Transition(Idle, EventDismiss)
	if b[0] != EffectStopFeed {
		t.Fatal("transition table mutated through returned effects")
	}
}

func TestCentered(t *testing.T) {
	got := Centered(Size{W: 80, H: 24}, Size{W: 30, H: 13})
	want := Rect{X: 25, Y: 5, W: 30, H: 13}
	if got != want {
		t.Errorf("Centered = %+v, want %+v", got, want)
	}

	clamped := Centered(Size{W: 20, H: 10}, Size{W: 30, H: 13})
	if clamped.W != 20 || clamped.H != 10 || clamped.X != 0 || clamped.Y != 0 {
		t.Errorf("clamped = %+v", clamped)
	}
}

func TestRectTween(t *testing.T) {
	start := time.Unix(0, 0)
	from := Rect{X: 2, Y: 1, W: 4, H: 2}
	to := Rect{X: 25, Y: 5, W: 30, H: 13}
	tw := NewRectTween(from, to, start, 400*time.Millisecond, anim.Linear)

	if got := tw.At(start); got != from {
		t.Errorf("start = %+v", got)
	}
	mid := tw.At(start.Add(200 * time.Millisecond))
	if math.Abs(mid.W-17) > 1e-9 || math.Abs(mid.X-13.5) > 1e-9 {
		t.Errorf("mid = %+v", mid)
	}
	if !tw.Done(start.Add(400*time.Millisecond)) || tw.At(start.Add(time.Second)) != to {
		t.Error("tween should settle on To")
	}
}

func TestCelebrationSteps(t *testing.T) {
	steps := DefaultCelebrationTiming().Steps()
	want := []Step{
		{CueFadeOut, 0},
		{CueShowHeight, 100 * time.Millisecond},
		{CueNudge, 1500 * time.Millisecond},
		{CueSlideOff, 1650 * time.Millisecond},
		{CueOffscreen, 2050 * time.Millisecond},
		{CueReenter, 2300 * time.Millisecond},
		{CueDone, 2800 * time.Millisecond},
	}
	if !slices.Equal(steps, want) {
		t.Fatalf("steps = %v", steps)
	}
	if DefaultCelebrationTiming().Total() != 2800*time.Millisecond {
		t.Errorf("total = %v", DefaultCelebrationTiming().Total())
	}
}

func TestCelebration_Due(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewCelebration(800001, start, DefaultCelebrationTiming())

	if got := c.Due(start); len(got) != 1 || got[0].Cue != CueFadeOut {
		t.Fatalf("due at start = %v", got)
	}
	if got := c.Due(start.Add(50 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("nothing should be due yet, got %v", got)
	}
	next, ok := c.NextAt()
	if !ok || !next.Equal(start.Add(100*time.Millisecond)) {
		t.Errorf("NextAt = %v, %v", next, ok)
	}

	late := c.Due(start.Add(2 * time.Second))
	cues := make([]Cue, len(late))
	for i, s := range late {
		cues[i] = s.Cue
	}
	if !slices.Equal(cues, []Cue{CueShowHeight, CueNudge, CueSlideOff}) {
		t.Errorf("late wakeup cues = %v", cues)
	}

	c.Due(start.Add(3 * time.Second))
	if !c.Finished() {
		t.Error("celebration should be finished")
	}
	if _, ok := c.NextAt(); ok {
		t.Error("finished celebration has no next step")
	}
}

func TestView_At(t *testing.T) {
	now := time.Unix(0, 0)
	v := View{
		Phase:   Idle,
		Block:   StaticRect(Rect{X: 10, Y: 4, W: 30, H: 13}),
		Shadow:  anim.Static(0.75),
		Content: ContentSnapshot,
		Lines:   []string{"a", "b", "c"},
		Alpha:   anim.Static(1),
		Stagger: Stagger{Start: now, Step: 50 * time.Millisecond, Line: 200 * time.Millisecond},
	}

	f := v.At(now.Add(50 * time.Millisecond))
	if f.Lines[0].Alpha <= 0 || f.Lines[1].Alpha != 0 || f.Lines[2].Alpha != 0 {
		t.Errorf("stagger alphas = %.2f %.2f %.2f", f.Lines[0].Alpha, f.Lines[1].Alpha, f.Lines[2].Alpha)
	}
	if f.Lines[1].Offset != 1 {
		t.Errorf("pending line offset = %v", f.Lines[1].Offset)
	}

	settled := v.At(now.Add(time.Second))
	for i, l := range settled.Lines {
		if l.Alpha != 1 || l.Offset != 0 {
			t.Errorf("line %d not settled: %+v", i, l)
		}
	}
	if settled.Brightness != 1 {
		t.Errorf("stopped pulse brightness = %v", settled.Brightness)
	}
}

func TestView_Heartbeat(t *testing.T) {
	now := time.Unix(0, 0)
	base := Rect{X: 10, Y: 4, W: 30, H: 12}
	v := View{
		Block:     StaticRect(base),
		Heartbeat: anim.Bump{Start: now, Duration: 300 * time.Millisecond, Peak: 0.1},
	}

	peak := v.At(now.Add(150 * time.Millisecond)).Rect
	if peak.W <= base.W || peak.X >= base.X {
		t.Errorf("heartbeat should grow the block around its center: %+v", peak)
	}
	if got := v.At(now.Add(time.Second)).Rect; got != base {
		t.Errorf("after heartbeat = %+v", got)
	}
}
