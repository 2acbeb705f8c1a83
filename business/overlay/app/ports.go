// Package app contains the overlay controller and its port definitions.
package app

import (
	"context"
	"time"

	mempoolApp "github.com/fd1az/mempool-block/business/mempool/app"
	mempoolDomain "github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/business/overlay/domain"
)

// Renderer draws the overlay. Errors are logged by the controller and never change the phase.
type Renderer interface {
	// Mount inserts the overlay into the page.
	Mount(ctx context.Context, v domain.View) error
	// Update replaces the mounted view.
	Update(ctx context.Context, v domain.View) error
	// Unmount removes the overlay from the page.
	Unmount(ctx context.Context) error
}

// Page exposes the host page geometry in cells.
type Page interface {
	// OriginRect returns the origin element's current rectangle, false when it is absent.
	OriginRect() (domain.Rect, bool)
	// Viewport returns the drawable area.
	Viewport() domain.Size
}

// Haptics plays a vibration pattern of alternating on/off durations.
type Haptics interface {
	Vibrate(pattern ...time.Duration)
}

// EngineLoader prepares the animation engine before the first activation.
type EngineLoader interface {
	Load(ctx context.Context) error
}

// Feed is the live data source owned by one overlay session.
type Feed interface {
	Start(ctx context.Context) error
	Stop()
	Pause()
	Resume()
	SetSuppressed(suppressed bool)
	LastSnapshot() (mempoolDomain.BlockSnapshot, bool)
}

// FeedFactory creates a feed per session.
type FeedFactory interface {
	NewFeed(cb mempoolApp.Callbacks) Feed
}

// FeedFactoryFunc adapts a function to FeedFactory.
type FeedFactoryFunc func(cb mempoolApp.Callbacks) Feed

// NewFeed calls f.
func (f FeedFactoryFunc) NewFeed(cb mempoolApp.Callbacks) Feed {
	return f(cb)
}

// Input is a session listener event from the page.
type Input int

const (
	InputEscape Input = iota
	InputBackgroundClick
)

func (i Input) String() string {
	switch i {
	case InputEscape:
		return "escape"
	case InputBackgroundClick:
		return "background_click"
	default:
		return "unknown"
	}
}
