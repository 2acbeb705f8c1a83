package ui

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	overlayDomain "github.com/fd1az/mempool-block/business/overlay/domain"
)

// Shadow offset in cells, down and to the right of the block.
const (
	shadowDX = 2
	shadowDY = 1
)

// DrawOverlay composites one overlay frame onto c.
func DrawOverlay(c *Canvas, f overlayDomain.Frame, p Palette, contentAlpha float64) {
	full := overlayDomain.Rect{W: float64(c.w), H: float64(c.h)}
	c.Tint(full, p.Shadow, 0.55)

	rect := f.Rect.Round()
	if rect.Empty() {
		return
	}
	if f.Shadow > 0 {
		c.Tint(rect.Offset(shadowDX, shadowDY), p.Shadow, f.Shadow)
	}

	face := dim(p.Block, f.Brightness)
	top := overlayDomain.Rect{X: rect.X + 1, Y: rect.Y - 1, W: rect.W, H: 1}
	side := overlayDomain.Rect{X: rect.X + rect.W, Y: rect.Y, W: 1, H: rect.H}
	c.Fill(top, dim(p.BlockTop, f.Brightness))
	c.Fill(side, dim(p.BlockSide, f.Brightness))
	c.Fill(rect, face)

	switch f.Content {
	case overlayDomain.ContentPlaceholder:
		c.TextCentered(rect, int(rect.Y+rect.H/2), overlayDomain.PlaceholderGlyph, p.Text, contentAlpha, true)
	case overlayDomain.ContentSnapshot:
		drawSnapshot(c, rect, f, p)
	case overlayDomain.ContentHeight:
		mid := int(rect.Y + rect.H/2)
		c.TextCentered(rect, mid-1, "NEW BLOCK", p.Muted, contentAlpha, false)
		c.TextCentered(rect, mid, f.Label, p.Text, contentAlpha, f.LabelScale >= 1)
	}
}

func drawSnapshot(c *Canvas, rect overlayDomain.Rect, f overlayDomain.Frame, p Palette) {
	n := len(f.Lines)
	if n == 0 || int(rect.H) < n+2 || int(rect.W) < 12 {
		return
	}
	start := int(rect.Y) + (int(rect.H)-n)/2
	for i, line := range f.Lines {
		y := start + i + int(line.Offset+0.5)
		fg := p.Text
		if i > 0 {
			fg = p.Muted
		}
		c.TextCentered(rect, y, line.Text, fg, line.Alpha, i == 0)
	}

	footer := int(rect.Y + rect.H - 1)
	alpha := 0.0
	if n > 0 {
		alpha = f.Lines[0].Alpha
	}
	bar := fullnessBar(f.Fullness, int(rect.W)-4)
	c.TextCentered(rect, footer-1, bar, p.Muted, alpha, false)
	if f.Status != "" {
		c.Text(int(rect.X)+1, footer, f.Status, p.Muted, 1, false)
	}
}

func fullnessBar(pct, width int) string {
	if width <= 0 {
		return ""
	}
	label := fmt.Sprintf(" %d%%", pct)
	w := width - len(label)
	if w <= 0 {
		return label
	}
	filled := pct * w / 100
	if filled > w {
		filled = w
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", w-filled) + label
}

func dim(c colorful.Color, brightness float64) colorful.Color {
	if brightness <= 0 {
		brightness = 1
	}
	return colorful.Color{R: c.R * brightness, G: c.G * brightness, B: c.B * brightness}.Clamped()
}
