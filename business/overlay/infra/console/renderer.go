// Package console renders the overlay as a line log for headless runs.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/business/overlay/domain"
)

var contentLabels = []string{"Fee", "Range", "Total", "Count", "ETA"}

// Renderer implements app.Renderer by printing what changed between views.
type Renderer struct {
	mu      sync.Mutex
	out     io.Writer
	clock   clock.Clock
	last    domain.View
	mounted bool
}

// NewRenderer creates a renderer writing to out, stdout when nil.
func NewRenderer(out io.Writer, clk clock.Clock) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Renderer{out: out, clock: clk}
}

// Mount prints the session banner.
func (r *Renderer) Mount(_ context.Context, v domain.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mounted = true
	r.last = v
	r.printf("overlay opened (session %d)", v.Session)
	return nil
}

// Update prints the fields that changed since the last view.
func (r *Renderer) Update(_ context.Context, v domain.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mounted {
		return fmt.Errorf("update before mount")
	}
	prev := r.last
	r.last = v

	if v.Phase != prev.Phase {
		r.printf("phase: %s", v.Phase)
	}
	if v.Status != prev.Status {
		r.printf("feed: %s", v.Status)
	}
	if v.Content == prev.Content && v.Label == prev.Label && slices.Equal(v.Lines, prev.Lines) {
		return nil
	}

	switch v.Content {
	case domain.ContentPlaceholder:
		r.printf("%s waiting for data", v.Label)
	case domain.ContentHeight:
		r.printf("NEW BLOCK #%s", v.Label)
	case domain.ContentSnapshot:
		r.printf("next block (%d%% full)", v.Fullness)
		for i, line := range v.Lines {
			label := ""
			if i < len(contentLabels) {
				label = contentLabels[i]
			}
			fmt.Fprintf(r.out, "  %-6s %s\n", label, line)
		}
	}
	return nil
}

// Unmount prints the closing line.
func (r *Renderer) Unmount(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mounted {
		return nil
	}
	r.mounted = false
	r.printf("overlay closed")
	return nil
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.out, "[%s] %s\n", r.clock.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}
