package app

import (
	"context"
	"sync"

	"github.com/fd1az/mempool-block/internal/apperror"
)

// LoaderFunc loads the engine once.
type LoaderFunc func(ctx context.Context) error

// CachedLoader runs its load function until it succeeds once.
// A failure leaves it armed for the next activation.
type CachedLoader struct {
	mu     sync.Mutex
	load   LoaderFunc
	loaded bool
}

// NewCachedLoader wraps fn. A nil fn always succeeds.
func NewCachedLoader(fn LoaderFunc) *CachedLoader {
	return &CachedLoader{load: fn}
}

// Load runs the load function unless a previous call succeeded.
func (l *CachedLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return nil
	}
	if l.load != nil {
		if err := l.load(ctx); err != nil {
			return apperror.Wrap(err, apperror.CodeEngineLoadFailed, "animation engine")
		}
	}
	l.loaded = true
	return nil
}

// Loaded reports whether a load has succeeded.
func (l *CachedLoader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
