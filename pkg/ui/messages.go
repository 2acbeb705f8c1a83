package ui

import (
	"time"

	"github.com/fd1az/mempool-block/business/overlay/domain"
)

// Message types for page updates

// FrameMsg is sent on every animation frame while the overlay is mounted.
type FrameMsg struct {
	Time time.Time
}

type overlayOp int

const (
	opMount overlayOp = iota
	opUpdate
	opUnmount
)

// OverlayMsg carries a renderer call from the overlay controller to the page.
type OverlayMsg struct {
	op   overlayOp
	View domain.View
}

// Mounted reports whether the message mounts the overlay.
func (m OverlayMsg) Mounted() bool { return m.op == opMount }

// Unmounted reports whether the message removes the overlay.
func (m OverlayMsg) Unmounted() bool { return m.op == opUnmount }
