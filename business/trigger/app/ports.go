// Package app wires the gesture recognizers to the overlay.
package app

import (
	"context"
	"time"

	"github.com/fd1az/mempool-block/business/trigger/domain"
)

// Activator opens the overlay. Implementations must not block.
type Activator interface {
	Activate(ctx context.Context)
}

// Haptics plays a vibration pattern of alternating on/off durations.
type Haptics interface {
	Vibrate(pattern ...time.Duration)
}

// Page exposes the host page state the detector depends on.
type Page interface {
	// OriginRect returns the origin element in pixels, false when it is not laid out.
	OriginRect() (domain.Rect, bool)
	// ViewportWidth returns the viewport width in pixels.
	ViewportWidth() float64
	// TextInputFocused reports whether typing goes to an input field.
	TextInputFocused() bool
	// HelpOpen reports whether the help modal is showing.
	HelpOpen() bool
}
