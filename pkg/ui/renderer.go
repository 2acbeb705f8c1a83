package ui

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	overlayDomain "github.com/fd1az/mempool-block/business/overlay/domain"
)

// ErrPageClosed is returned when the page stopped listening for overlay updates.
var ErrPageClosed = errors.New("page closed")

// Renderer forwards overlay renderer calls into the Bubble Tea loop.
// The model receives them through Listen.
type Renderer struct {
	msgs chan OverlayMsg
	done chan struct{}
	once sync.Once
}

// NewRenderer creates a renderer with room for buffer pending calls.
func NewRenderer(buffer int) *Renderer {
	return &Renderer{
		msgs: make(chan OverlayMsg, buffer),
		done: make(chan struct{}),
	}
}

func (r *Renderer) send(ctx context.Context, msg OverlayMsg) error {
	select {
	case r.msgs <- msg:
		return nil
	case <-r.done:
		return ErrPageClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Renderer) Mount(ctx context.Context, v overlayDomain.View) error {
	return r.send(ctx, OverlayMsg{op: opMount, View: v})
}

func (r *Renderer) Update(ctx context.Context, v overlayDomain.View) error {
	return r.send(ctx, OverlayMsg{op: opUpdate, View: v})
}

func (r *Renderer) Unmount(ctx context.Context) error {
	return r.send(ctx, OverlayMsg{op: opUnmount})
}

// Close stops delivery. Pending and later calls fail with ErrPageClosed.
func (r *Renderer) Close() {
	r.once.Do(func() { close(r.done) })
}

// Listen returns a command that waits for the next renderer call.
func (r *Renderer) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-r.msgs:
			return msg
		case <-r.done:
			return nil
		}
	}
}

// Bell plays haptic patterns as a terminal bell, one ring per pattern.
type Bell struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBell creates a bell writing to out.
func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

func (b *Bell) Vibrate(pattern ...time.Duration) {
	if len(pattern) == 0 || b.out == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.out, "\a")
}
