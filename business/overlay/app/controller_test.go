package app

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	mempoolApp "github.com/fd1az/mempool-block/business/mempool/app"
	mempoolDomain "github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/business/overlay/domain"
	"github.com/fd1az/mempool-block/internal/logger"
)

type fakeRenderer struct {
	mu       sync.Mutex
	mounts   int
	unmounts int
	views    []domain.View
	err      error
}

func (r *fakeRenderer) Mount(_ context.Context, v domain.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounts++
	r.views = append(r.views, v)
	return r.err
}

func (r *fakeRenderer) Update(_ context.Context, v domain.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
	return r.err
}

func (r *fakeRenderer) Unmount(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmounts++
	return r.err
}

func (r *fakeRenderer) last() domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

func (r *fakeRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *fakeRenderer) since(n int) []domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.views[n:])
}

func (r *fakeRenderer) counts() (mounts, unmounts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounts, r.unmounts
}

type fakePage struct {
	mu     sync.Mutex
	origin domain.Rect
	ok     bool
}

func (p *fakePage) OriginRect() (domain.Rect, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.origin, p.ok
}

func (p *fakePage) Viewport() domain.Size { return domain.Size{W: 80, H: 24} }

func (p *fakePage) move(r domain.Rect) {
	p.mu.Lock()
	p.origin = r
	p.mu.Unlock()
}

type fakeHaptics struct {
	mu       sync.Mutex
	patterns [][]time.Duration
}

func (h *fakeHaptics) Vibrate(p ...time.Duration) {
	h.mu.Lock()
	h.patterns = append(h.patterns, p)
	h.mu.Unlock()
}

type fakeFeed struct {
	mu         sync.Mutex
	cb         mempoolApp.Callbacks
	starts     int
	stops      int
	pauses     int
	resumes    int
	suppressed bool
	snap       mempoolDomain.BlockSnapshot
	hasSnap    bool
}

func (f *fakeFeed) Start(context.Context) error { f.mu.Lock(); f.starts++; f.mu.Unlock(); return nil }
func (f *fakeFeed) Stop()                       { f.mu.Lock(); f.stops++; f.mu.Unlock() }
func (f *fakeFeed) Pause()                      { f.mu.Lock(); f.pauses++; f.mu.Unlock() }
func (f *fakeFeed) Resume()                     { f.mu.Lock(); f.resumes++; f.mu.Unlock() }

func (f *fakeFeed) SetSuppressed(s bool) {
	f.mu.Lock()
	f.suppressed = s
	f.mu.Unlock()
}

func (f *fakeFeed) LastSnapshot() (mempoolDomain.BlockSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.hasSnap
}

// push records a snapshot and reports it unless suppressed, like the feed manager.
func (f *fakeFeed) push(s mempoolDomain.BlockSnapshot) {
	f.mu.Lock()
	f.snap, f.hasSnap = s, true
	fire := !f.suppressed
	cb := f.cb.OnSnapshot
	f.mu.Unlock()
	if fire {
		cb(s)
	}
}

func (f *fakeFeed) isSuppressed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suppressed
}

type harness struct {
	c        *Controller
	renderer *fakeRenderer
	page     *fakePage
	haptics  *fakeHaptics
	mock     *clock.Mock

	mu    sync.Mutex
	feeds []*fakeFeed
}

func (h *harness) feed(i int) *fakeFeed {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.feeds[i]
}

func (h *harness) feedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds)
}

func newHarness(t *testing.T, loader EngineLoader) *harness {
	t.Helper()
	h := &harness{
		renderer: &fakeRenderer{},
		page:     &fakePage{origin: domain.Rect{X: 2, Y: 1, W: 4, H: 2}, ok: true},
		haptics:  &fakeHaptics{},
		mock:     clock.NewMock(),
	}
	factory := FeedFactoryFunc(func(cb mempoolApp.Callbacks) Feed {
		f := &fakeFeed{cb: cb}
		h.mu.Lock()
		h.feeds = append(h.feeds, f)
		h.mu.Unlock()
		return f
	})

	cfg := DefaultConfig()
	cfg.FrameInterval = 10 * time.Millisecond
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	h.c = NewController(cfg, h.renderer, h.page, h.haptics, loader, factory, h.mock, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) waitPhase(t *testing.T, p domain.Phase) {
	t.Helper()
	waitFor(t, "phase "+p.String(), func() bool { return h.c.Phase() == p })
}

// open activates and settles into Idle.
func (h *harness) open(t *testing.T) *fakeFeed {
	t.Helper()
	h.c.Activate(context.Background())
	h.waitPhase(t, domain.Entering)
	h.mock.Add(700 * time.Millisecond)
	h.waitPhase(t, domain.Idle)
	return h.feed(h.feedCount() - 1)
}

func snapshot(t *testing.T, nTx int64, median float64) mempoolDomain.BlockSnapshot {
	t.Helper()
	s, err := mempoolDomain.NewSnapshot(mempoolDomain.RawBlock{
		BlockVSize: 997000,
		NTx:        nTx,
		TotalFees:  250000000,
		MedianFee:  median,
		FeeRange:   []float64{5, 10, 120},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestController_EntryToIdle(t *testing.T) {
	h := newHarness(t, nil)

	h.c.Activate(context.Background())
	h.waitPhase(t, domain.Entering)

	mounts, _ := h.renderer.counts()
	if mounts != 1 {
		t.Fatalf("mounts = %d", mounts)
	}
	entry := h.renderer.last()
	if entry.Block.From != (domain.Rect{X: 2, Y: 1, W: 4, H: 2}) {
		t.Errorf("entry starts at %+v, want origin", entry.Block.From)
	}
	if entry.Block.To != domain.Centered(h.page.Viewport(), DefaultConfig().BlockSize) {
		t.Errorf("entry target = %+v", entry.Block.To)
	}
	if entry.Shadow.From != 0 || entry.Shadow.To != 0.75 {
		t.Errorf("shadow = %v -> %v", entry.Shadow.From, entry.Shadow.To)
	}

	h.c.Activate(context.Background())
	h.mock.Add(700 * time.Millisecond)
	h.waitPhase(t, domain.Idle)

	if h.feedCount() != 1 {
		t.Errorf("feeds created = %d, repeated activation must be a no-op", h.feedCount())
	}
	v := h.renderer.last()
	if v.Content != domain.ContentPlaceholder || v.Label != domain.PlaceholderGlyph {
		t.Errorf("idle without data should show placeholder, got %v %q", v.Content, v.Label)
	}
	if !v.Pulse.Running() {
		t.Error("pulse should run in idle")
	}
}

func TestController_SnapshotDuringEntryShownWithStagger(t *testing.T) {
	h := newHarness(t, nil)

	h.c.Activate(context.Background())
	h.waitPhase(t, domain.Entering)
	waitFor(t, "feed", func() bool { return h.feedCount() == 1 })
	feed := h.feed(0)
	feed.push(snapshot(t, 3142, 42.6))

	h.mock.Add(700 * time.Millisecond)
	h.waitPhase(t, domain.Idle)

	v := h.renderer.last()
	if v.Content != domain.ContentSnapshot {
		t.Fatalf("content = %v", v.Content)
	}
	want := []string{"~43 sat/vB", "5.00 - 120 sat/vB", "2.500 BTC", "3,142 transactions", "~10 min"}
	if !slices.Equal(v.Lines, want) {
		t.Errorf("lines = %q, want %q", v.Lines, want)
	}
	if v.Stagger.Start.IsZero() {
		t.Error("first paint should stagger")
	}
}

func TestController_IdleUpdatesInPlace(t *testing.T) {
	h := newHarness(t, nil)
	feed := h.open(t)

	feed.push(snapshot(t, 3142, 42.6))
	waitFor(t, "snapshot", func() bool { return h.renderer.last().Content == domain.ContentSnapshot })
	first := h.renderer.last()

	h.mock.Add(time.Second)
	n := h.renderer.count()
	feed.push(snapshot(t, 3200, 42.6))
	waitFor(t, "update", func() bool { return h.renderer.count() > n })

	v := h.renderer.last()
	if !v.Stagger.Start.Equal(first.Stagger.Start) {
		t.Error("stagger replayed on an in-place update")
	}
	if v.Heartbeat.Start.IsZero() {
		t.Error("changed tx count should trigger a heartbeat")
	}
	if v.Lines[3] != "3,200 transactions" {
		t.Errorf("count line = %q", v.Lines[3])
	}
}

func TestController_Celebration(t *testing.T) {
	h := newHarness(t, nil)
	feed := h.open(t)
	latest := snapshot(t, 3142, 42.6)
	feed.push(latest)
	waitFor(t, "snapshot", func() bool { return h.renderer.last().Content == domain.ContentSnapshot })

	feed.cb.OnNewBlock(800001)
	h.waitPhase(t, domain.Celebrating)

	if !feed.isSuppressed() {
		t.Error("feed updates should be suppressed while celebrating")
	}
	h.haptics.mu.Lock()
	patterns := slices.Clone(h.haptics.patterns)
	h.haptics.mu.Unlock()
	if len(patterns) != 1 || !slices.Equal(patterns[0], domain.CelebrationHaptics) {
		t.Errorf("haptics = %v", patterns)
	}

	mark := h.renderer.count()
	latest = snapshot(t, 4000, 50)
	feed.push(latest)
	feed.cb.OnSnapshot(latest)
	feed.cb.OnNewBlock(800002)

	h.mock.Add(500 * time.Millisecond)
	waitFor(t, "height label", func() bool { return h.renderer.last().Content == domain.ContentHeight })
	if got := h.renderer.last().Label; got != "800,001" {
		t.Errorf("height label = %q", got)
	}

	h.mock.Add(3 * time.Second)
	h.waitPhase(t, domain.Idle)

	for _, v := range h.renderer.since(mark) {
		if v.Phase == domain.Celebrating && v.Content == domain.ContentSnapshot && len(v.Lines) > 0 && v.Lines[3] == "4,000 transactions" {
			t.Fatal("snapshot rendered during celebration")
		}
	}

	v := h.renderer.last()
	if v.Content != domain.ContentSnapshot || v.Lines[3] != "4,000 transactions" {
		t.Errorf("idle content should restore the latest snapshot, got %v %q", v.Content, v.Lines)
	}
	if feed.isSuppressed() {
		t.Error("suppression should clear after the celebration")
	}
	if !v.Pulse.Running() {
		t.Error("pulse should resume")
	}
	if v.Block.To != domain.Centered(h.page.Viewport(), DefaultConfig().BlockSize) {
		t.Errorf("block should settle back at center, got %+v", v.Block.To)
	}
}

func TestController_DismissAndReopen(t *testing.T) {
	h := newHarness(t, nil)
	feed := h.open(t)

	moved := domain.Rect{X: 10, Y: 3, W: 4, H: 2}
	h.page.move(moved)

	h.c.Input(context.Background(), InputEscape)
	h.waitPhase(t, domain.Exiting)
	h.c.Dismiss(context.Background())

	v := h.renderer.last()
	if v.Block.To != moved {
		t.Errorf("exit target = %+v, want re-read origin %+v", v.Block.To, moved)
	}
	if v.Shadow.To != 0 || v.Pulse.Started() {
		t.Error("exit should fade the shadow and drop the pulse")
	}
	feed.mu.Lock()
	stops := feed.stops
	feed.mu.Unlock()
	if stops == 0 {
		t.Error("feed should stop on dismiss")
	}

	h.mock.Add(500 * time.Millisecond)
	h.waitPhase(t, domain.Closed)
	waitFor(t, "unmount", func() bool { _, u := h.renderer.counts(); return u == 1 })

	h.c.Dismiss(context.Background())
	h.c.Input(context.Background(), InputBackgroundClick)
	h.open(t)
	if _, u := h.renderer.counts(); u != 1 {
		t.Errorf("unmounts = %d, closing twice must not tear down twice", u)
	}
	if h.feedCount() != 2 {
		t.Errorf("feeds = %d, reopening should start a fresh feed", h.feedCount())
	}
}

func TestController_StaleSessionEventsDropped(t *testing.T) {
	h := newHarness(t, nil)
	old := h.open(t)
	h.c.Dismiss(context.Background())
	h.waitPhase(t, domain.Exiting)
	h.mock.Add(500 * time.Millisecond)
	h.waitPhase(t, domain.Closed)

	h.open(t)
	n := h.renderer.count()

	go old.cb.OnNewBlock(900000)
	go old.cb.OnSnapshot(snapshot(t, 1, 1))
	time.Sleep(20 * time.Millisecond)

	if h.c.Phase() != domain.Idle {
		t.Errorf("phase = %v, stale callbacks must not affect a new session", h.c.Phase())
	}
	if h.renderer.count() != n {
		t.Error("stale callbacks rendered into the new session")
	}
}

func TestController_MissingOrigin(t *testing.T) {
	h := newHarness(t, nil)
	h.page.mu.Lock()
	h.page.ok = false
	h.page.mu.Unlock()

	h.c.Activate(context.Background())
	time.Sleep(10 * time.Millisecond)
	if h.c.Phase() != domain.Closed || h.feedCount() != 0 {
		t.Error("activation without origin should be a silent no-op")
	}
}

func TestController_EngineLoadFailureRearms(t *testing.T) {
	attempts := 0
	loader := NewCachedLoader(func(context.Context) error {
		attempts++
		if attempts == 1 {
			return errors.New("not available")
		}
		return nil
	})
	h := newHarness(t, loader)

	h.c.Activate(context.Background())
	time.Sleep(10 * time.Millisecond)
	if h.c.Phase() != domain.Closed {
		t.Fatalf("phase = %v after failed load", h.c.Phase())
	}

	h.c.Activate(context.Background())
	h.waitPhase(t, domain.Entering)
	if !loader.Loaded() {
		t.Error("loader should cache success")
	}
}

func TestController_RenderErrorsDoNotChangePhase(t *testing.T) {
	h := newHarness(t, nil)
	h.renderer.err = errors.New("terminal gone")

	h.open(t)
	h.c.Dismiss(context.Background())
	h.waitPhase(t, domain.Exiting)
	h.mock.Add(500 * time.Millisecond)
	h.waitPhase(t, domain.Closed)
}

func TestController_Visibility(t *testing.T) {
	h := newHarness(t, nil)
	feed := h.open(t)

	h.c.SetVisible(context.Background(), false)
	waitFor(t, "pause", func() bool { feed.mu.Lock(); defer feed.mu.Unlock(); return feed.pauses == 1 })
	waitFor(t, "pulse paused", func() bool { return !h.renderer.last().Pulse.Running() })
	if h.c.Phase() != domain.Idle {
		t.Errorf("hiding changed phase to %v", h.c.Phase())
	}

	h.c.SetVisible(context.Background(), false)
	h.c.SetVisible(context.Background(), true)
	waitFor(t, "resume", func() bool { feed.mu.Lock(); defer feed.mu.Unlock(); return feed.resumes == 1 })
	waitFor(t, "pulse resumed", func() bool { return h.renderer.last().Pulse.Running() })

	feed.mu.Lock()
	defer feed.mu.Unlock()
	if feed.pauses != 1 || feed.resumes != 1 {
		t.Errorf("pauses = %d, resumes = %d", feed.pauses, feed.resumes)
	}
}
