// Package app contains the feed manager and port definitions for the mempool context.
package app

import (
	"context"

	"github.com/fd1az/mempool-block/business/mempool/domain"
)

// SnapshotFetcher fetches the next projected block over request/response.
type SnapshotFetcher interface {
	// FetchNextBlock returns the first projected block, or nil when the upstream has none.
	FetchNextBlock(ctx context.Context) (*domain.RawBlock, error)
}

// StreamHandler receives decoded push traffic for one subscription.
type StreamHandler interface {
	HandleMessage(ctx context.Context, msg domain.FeedMessage)
	HandleState(state domain.ConnectionState)
}

// PushStream opens push subscriptions. Open returns immediately and connects in the background.
type PushStream interface {
	Open(ctx context.Context, h StreamHandler) (Subscription, error)
}

// Subscription is one live push connection and its reconnect loop.
type Subscription interface {
	Close() error
	State() domain.ConnectionState
}

// Callbacks receive feed output. Any may be nil.
type Callbacks struct {
	OnSnapshot func(domain.BlockSnapshot)
	OnNewBlock func(height int64)
	OnStatus   func(domain.Status)
}
