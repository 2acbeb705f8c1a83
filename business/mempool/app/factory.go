package app

import (
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/internal/logger"
)

// FeedFactory builds one FeedManager per overlay session over shared adapters.
type FeedFactory struct {
	config  FeedConfig
	fetcher SnapshotFetcher
	stream  PushStream
	clock   clock.Clock
	logger  logger.LoggerInterface
	board   *StatusBoard
}

// NewFeedFactory creates a factory.
func NewFeedFactory(cfg FeedConfig, fetcher SnapshotFetcher, stream PushStream, clk clock.Clock, log logger.LoggerInterface) *FeedFactory {
	return &FeedFactory{
		config:  cfg,
		fetcher: fetcher,
		stream:  stream,
		clock:   clk,
		logger:  log,
		board:   &StatusBoard{},
	}
}

// New returns a stopped feed whose status is also published on the board.
func (ff *FeedFactory) New(cb Callbacks) *FeedManager {
	onStatus := cb.OnStatus
	cb.OnStatus = func(s domain.Status) {
		ff.board.Record(s)
		if onStatus != nil {
			onStatus(s)
		}
	}
	return NewFeedManager(ff.config, ff.fetcher, ff.stream, cb, ff.clock, ff.logger)
}

// Board returns the shared status board.
func (ff *FeedFactory) Board() *StatusBoard {
	return ff.board
}

// StatusBoard holds the most recent status reported by any feed.
type StatusBoard struct {
	mu     sync.RWMutex
	latest domain.Status
	seen   bool
}

// Record stores s as the latest status.
func (b *StatusBoard) Record(s domain.Status) {
	b.mu.Lock()
	b.latest = s
	b.seen = true
	b.mu.Unlock()
}

// Latest returns the last recorded status and whether one exists.
func (b *StatusBoard) Latest() (domain.Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.seen
}
