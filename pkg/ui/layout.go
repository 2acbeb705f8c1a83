package ui

import (
	"sync"

	overlayDomain "github.com/fd1az/mempool-block/business/overlay/domain"
	triggerDomain "github.com/fd1az/mempool-block/business/trigger/domain"
)

// Home square placement in cells. Terminals at or below narrowCols get the compact square.
const (
	homeX      = 2
	homeY      = 2
	narrowCols = 96
)

// CellSize is the pixel size of one terminal cell used for gesture math.
type CellSize struct {
	W, H float64
}

// Layout is the page geometry shared between the Bubble Tea loop, the gesture detector and the overlay controller.
type Layout struct {
	mu           sync.RWMutex
	cols, rows   int
	cell         CellSize
	helpOpen     bool
	inputFocused bool
}

// NewLayout creates a layout for a cols x rows terminal.
func NewLayout(cols, rows int, cell CellSize) *Layout {
	return &Layout{cols: cols, rows: rows, cell: cell}
}

// Resize records a new terminal size.
func (l *Layout) Resize(cols, rows int) {
	l.mu.Lock()
	l.cols, l.rows = cols, rows
	l.mu.Unlock()
}

// Size returns the terminal size in cells.
func (l *Layout) Size() (cols, rows int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cols, l.rows
}

func (l *Layout) setHelp(open bool) {
	l.mu.Lock()
	l.helpOpen = open
	l.mu.Unlock()
}

func (l *Layout) setInputFocused(focused bool) {
	l.mu.Lock()
	l.inputFocused = focused
	l.mu.Unlock()
}

// HomeSquare returns the origin element in cells, false when the terminal is too small to draw it.
func (l *Layout) HomeSquare() (overlayDomain.Rect, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.homeSquare()
}

func (l *Layout) homeSquare() (overlayDomain.Rect, bool) {
	r := overlayDomain.Rect{X: homeX, Y: homeY, W: 6, H: 3}
	if l.cols <= narrowCols {
		r.W, r.H = 4, 2
	}
	if l.cols < int(r.X+r.W) || l.rows < int(r.Y+r.H) {
		return overlayDomain.Rect{}, false
	}
	return r, true
}

// ToPixels converts a cell position to the pixel at the cell's center.
func (l *Layout) ToPixels(col, row int) triggerDomain.Point {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return triggerDomain.Point{
		X: (float64(col) + 0.5) * l.cell.W,
		Y: (float64(row) + 0.5) * l.cell.H,
	}
}

// TouchPage adapts the layout to the gesture detector, which works in pixels.
func (l *Layout) TouchPage() *TouchPage { return &TouchPage{l: l} }

// OverlayPage adapts the layout to the overlay controller, which works in cells.
func (l *Layout) OverlayPage() *OverlayPage { return &OverlayPage{l: l} }

// TouchPage implements the trigger page port.
type TouchPage struct{ l *Layout }

func (p *TouchPage) OriginRect() (triggerDomain.Rect, bool) {
	p.l.mu.RLock()
	defer p.l.mu.RUnlock()
	r, ok := p.l.homeSquare()
	if !ok {
		return triggerDomain.Rect{}, false
	}
	c := p.l.cell
	return triggerDomain.Rect{X: r.X * c.W, Y: r.Y * c.H, W: r.W * c.W, H: r.H * c.H}, true
}

func (p *TouchPage) ViewportWidth() float64 {
	p.l.mu.RLock()
	defer p.l.mu.RUnlock()
	return float64(p.l.cols) * p.l.cell.W
}

func (p *TouchPage) TextInputFocused() bool {
	p.l.mu.RLock()
	defer p.l.mu.RUnlock()
	return p.l.inputFocused
}

func (p *TouchPage) HelpOpen() bool {
	p.l.mu.RLock()
	defer p.l.mu.RUnlock()
	return p.l.helpOpen
}

// OverlayPage implements the overlay page port.
type OverlayPage struct{ l *Layout }

func (p *OverlayPage) OriginRect() (overlayDomain.Rect, bool) {
	return p.l.HomeSquare()
}

func (p *OverlayPage) Viewport() overlayDomain.Size {
	cols, rows := p.l.Size()
	return overlayDomain.Size{W: float64(cols), H: float64(rows)}
}
