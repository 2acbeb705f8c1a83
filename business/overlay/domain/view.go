package domain

import (
	"time"

	"github.com/fd1az/mempool-block/internal/anim"
)

// PlaceholderGlyph is shown until the first snapshot arrives.
const PlaceholderGlyph = "₿"

// ContentMode selects what the block face shows.
type ContentMode int

const (
	ContentHidden ContentMode = iota
	ContentPlaceholder
	ContentSnapshot
	ContentHeight
)

func (m ContentMode) String() string {
	switch m {
	case ContentHidden:
		return "hidden"
	case ContentPlaceholder:
		return "placeholder"
	case ContentSnapshot:
		return "snapshot"
	case ContentHeight:
		return "height"
	default:
		return "unknown"
	}
}

// Stagger fades lines in one after another. A zero Start shows every line at once.
type Stagger struct {
	Start time.Time
	Step  time.Duration
	Line  time.Duration
}

func (s Stagger) tween(i int) anim.Tween {
	return anim.NewTween(0, 1, s.Start.Add(time.Duration(i)*s.Step), s.Line, anim.OutQuad)
}

// Alpha returns the opacity of line i at now.
func (s Stagger) Alpha(i int, now time.Time) float64 {
	if s.Start.IsZero() {
		return 1
	}
	return s.tween(i).At(now)
}

// Offset returns how many cells line i still sits below its resting row.
func (s Stagger) Offset(i int, now time.Time) float64 {
	if s.Start.IsZero() {
		return 0
	}
	return 1 - s.tween(i).At(now)
}

// View is the immutable description of the overlay handed to renderers.
// Animated fields are tweens so a renderer can sample any frame instant.
type View struct {
	Session   uint64
	Phase     Phase
	Block     RectTween
	Shadow    anim.Tween
	Content   ContentMode
	Lines     []string
	Label     string
	Fullness  int
	Stagger   Stagger
	Alpha     anim.Tween
	Emphasis  anim.Tween
	Heartbeat anim.Bump
	Pulse     anim.Pulse
	Status    string
}

// Line is one sampled content line.
type Line struct {
	Text   string
	Alpha  float64
	Offset float64
}

// Frame is a View sampled at one instant.
type Frame struct {
	Phase      Phase
	Rect       Rect
	Shadow     float64
	Brightness float64
	Content    ContentMode
	Lines      []Line
	Label      string
	LabelScale float64
	Fullness   int
	Status     string
}

// At samples the view at now.
func (v View) At(now time.Time) Frame {
	beat := v.Heartbeat.At(now)
	f := Frame{
		Phase:      v.Phase,
		Rect:       v.Block.At(now).Scale(beat),
		Shadow:     v.Shadow.At(now),
		Brightness: v.Pulse.At(now),
		Content:    v.Content,
		Label:      v.Label,
		LabelScale: 1,
		Fullness:   v.Fullness,
		Status:     v.Status,
	}

	alpha := v.Alpha.At(now)
	switch v.Content {
	case ContentSnapshot:
		f.Lines = make([]Line, len(v.Lines))
		for i, text := range v.Lines {
			f.Lines[i] = Line{
				Text:   text,
				Alpha:  alpha * v.Stagger.Alpha(i, now),
				Offset: v.Stagger.Offset(i, now),
			}
		}
	case ContentHeight:
		f.LabelScale = v.Emphasis.At(now)
	}
	return f
}

// ContentAlpha returns the face opacity at now.
func (v View) ContentAlpha(now time.Time) float64 {
	if v.Content == ContentHidden {
		return 0
	}
	alpha := v.Alpha.At(now)
	if v.Content == ContentHeight {
		alpha *= clampUnit(v.Emphasis.At(now))
	}
	return alpha
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
