package console

import "github.com/fd1az/mempool-block/business/overlay/domain"

// Page is a fixed virtual page for headless runs.
type Page struct {
	Origin domain.Rect
	Size   domain.Size
}

// DefaultPage returns an 80x24 page with the home square in the top left corner.
func DefaultPage() Page {
	return Page{
		Origin: domain.Rect{X: 2, Y: 1, W: 4, H: 2},
		Size:   domain.Size{W: 80, H: 24},
	}
}

// OriginRect returns the home square.
func (p Page) OriginRect() (domain.Rect, bool) {
	return p.Origin, !p.Origin.Empty()
}

// Viewport returns the page size.
func (p Page) Viewport() domain.Size {
	return p.Size
}
