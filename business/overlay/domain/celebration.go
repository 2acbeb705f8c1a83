package domain

import "time"

// CelebrationTiming holds the duration of each choreography segment.
type CelebrationTiming struct {
	FadeOut  time.Duration
	Emphasis time.Duration
	Hold     time.Duration
	Nudge    time.Duration
	SlideOff time.Duration
	Pause    time.Duration
	Reenter  time.Duration
}

// DefaultCelebrationTiming returns the stock choreography.
func DefaultCelebrationTiming() CelebrationTiming {
	return CelebrationTiming{
		FadeOut:  100 * time.Millisecond,
		Emphasis: 800 * time.Millisecond,
		Hold:     600 * time.Millisecond,
		Nudge:    150 * time.Millisecond,
		SlideOff: 400 * time.Millisecond,
		Pause:    250 * time.Millisecond,
		Reenter:  500 * time.Millisecond,
	}
}

// CelebrationHaptics is the vibration pattern played when a block is found.
var CelebrationHaptics = []time.Duration{50 * time.Millisecond, 30 * time.Millisecond, 100 * time.Millisecond}

// Cue is one beat of the choreography.
type Cue int

const (
	CueFadeOut Cue = iota
	CueShowHeight
	CueNudge
	CueSlideOff
	CueOffscreen
	CueReenter
	CueDone
)

func (c Cue) String() string {
	switch c {
	case CueFadeOut:
		return "fade_out"
	case CueShowHeight:
		return "show_height"
	case CueNudge:
		return "nudge"
	case CueSlideOff:
		return "slide_off"
	case CueOffscreen:
		return "offscreen"
	case CueReenter:
		return "reenter"
	case CueDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step is a cue scheduled at an offset from the start of the celebration.
type Step struct {
	Cue Cue
	At  time.Duration
}

// Steps lays the cues out back to back. The hold is the gap after the emphasis.
func (t CelebrationTiming) Steps() []Step {
	var at time.Duration
	steps := make([]Step, 0, 7)
	add := func(c Cue, d time.Duration) {
		steps = append(steps, Step{Cue: c, At: at})
		at += d
	}
	add(CueFadeOut, t.FadeOut)
	add(CueShowHeight, t.Emphasis+t.Hold)
	add(CueNudge, t.Nudge)
	add(CueSlideOff, t.SlideOff)
	add(CueOffscreen, t.Pause)
	add(CueReenter, t.Reenter)
	add(CueDone, 0)
	return steps
}

// Total returns the length of the choreography.
func (t CelebrationTiming) Total() time.Duration {
	steps := t.Steps()
	return steps[len(steps)-1].At
}

// Celebration tracks progress through one choreography run.
type Celebration struct {
	Height int64
	Start  time.Time
	steps  []Step
	next   int
}

// NewCelebration starts a choreography for height at start.
func NewCelebration(height int64, start time.Time, timing CelebrationTiming) *Celebration {
	return &Celebration{Height: height, Start: start, steps: timing.Steps()}
}

// Due returns the steps whose offset has elapsed at now and marks them applied.
// Steps come back in order, so a late wakeup still replays every beat.
func (c *Celebration) Due(now time.Time) []Step {
	elapsed := now.Sub(c.Start)
	first := c.next
	for c.next < len(c.steps) && c.steps[c.next].At <= elapsed {
		c.next++
	}
	return c.steps[first:c.next]
}

// Finished reports whether CueDone has been returned.
func (c *Celebration) Finished() bool {
	return c.next >= len(c.steps)
}

// NextAt returns when the next step is due.
func (c *Celebration) NextAt() (time.Time, bool) {
	if c.Finished() {
		return time.Time{}, false
	}
	return c.Start.Add(c.steps[c.next].At), true
}
