package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	overlayDomain "github.com/fd1az/mempool-block/business/overlay/domain"
)

type cell struct {
	ch   rune
	fg   colorful.Color
	bg   colorful.Color
	bold bool
}

// Canvas is a grid of colored cells the overlay is composited on.
type Canvas struct {
	w, h  int
	cells []cell
}

// NewCanvas creates a w x h canvas filled with bg.
func NewCanvas(w, h int, bg colorful.Color) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{ch: ' ', fg: bg, bg: bg}
	}
	return c
}

func (c *Canvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return nil
	}
	return &c.cells[y*c.w+x]
}

// Fill paints the background of every cell in r, clipped to the canvas.
func (c *Canvas) Fill(r overlayDomain.Rect, bg colorful.Color) {
	c.each(r, func(cl *cell) {
		cl.ch = ' '
		cl.bg = bg
	})
}

// Tint blends the background of every cell in r toward tint by amount.
func (c *Canvas) Tint(r overlayDomain.Rect, tint colorful.Color, amount float64) {
	amount = clamp01(amount)
	c.each(r, func(cl *cell) {
		cl.bg = cl.bg.BlendRgb(tint, amount).Clamped()
	})
}

func (c *Canvas) each(r overlayDomain.Rect, fn func(*cell)) {
	r = r.Round()
	x0, y0 := int(r.X), int(r.Y)
	for y := y0; y < y0+int(r.H); y++ {
		for x := x0; x < x0+int(r.W); x++ {
			if cl := c.at(x, y); cl != nil {
				fn(cl)
			}
		}
	}
}

// Text writes s starting at x, y. The cell backgrounds are kept and fg is blended into them by alpha.
func (c *Canvas) Text(x, y int, s string, fg colorful.Color, alpha float64, bold bool) {
	alpha = clamp01(alpha)
	if alpha == 0 {
		return
	}
	for _, r := range s {
		if cl := c.at(x, y); cl != nil {
			cl.ch = r
			cl.fg = cl.bg.BlendRgb(fg, alpha).Clamped()
			cl.bold = bold
		}
		x++
	}
}

// TextCentered writes s centered horizontally in r on row y.
func (c *Canvas) TextCentered(r overlayDomain.Rect, y int, s string, fg colorful.Color, alpha float64, bold bool) {
	r = r.Round()
	n := len([]rune(s))
	x := int(r.X) + (int(r.W)-n)/2
	c.Text(x, y, s, fg, alpha, bold)
}

// Render converts the canvas to styled terminal text, coalescing runs of equal style.
func (c *Canvas) Render(r *lipgloss.Renderer) string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := r.NewStyle().
				Foreground(lipgloss.Color(cur.fg.Hex())).
				Background(lipgloss.Color(cur.bg.Hex())).
				Bold(cur.bold)
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for x := 0; x < c.w; x++ {
			cl := c.cells[y*c.w+x]
			if run.Len() > 0 && !sameStyle(cl, cur) {
				flush()
			}
			cur = cl
			run.WriteRune(cl.ch)
		}
		flush()
	}
	return b.String()
}

// String returns the canvas characters without styling.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			b.WriteRune(c.cells[y*c.w+x].ch)
		}
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	return a.bold == b.bold && a.fg.Hex() == b.fg.Hex() && a.bg.Hex() == b.bg.Hex()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
