package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"

	"github.com/fd1az/mempool-block/business/overlay/domain"
)

func TestRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, clock.NewMock())
	ctx := context.Background()

	if err := r.Update(ctx, domain.View{}); err == nil {
		t.Error("update before mount should fail")
	}

	_ = r.Mount(ctx, domain.View{Session: 1, Phase: domain.Entering})
	_ = r.Update(ctx, domain.View{Session: 1, Phase: domain.Idle, Content: domain.ContentPlaceholder, Label: domain.PlaceholderGlyph})
	snap := domain.View{
		Session:  1,
		Phase:    domain.Idle,
		Content:  domain.ContentSnapshot,
		Lines:    []string{"~43 sat/vB", "5.00 - 120 sat/vB", "2.500 BTC", "3,142 transactions", "~10 min"},
		Fullness: 100,
		Status:   "connected",
	}
	_ = r.Update(ctx, snap)
	_ = r.Update(ctx, snap)
	_ = r.Update(ctx, domain.View{Session: 1, Phase: domain.Celebrating, Content: domain.ContentHeight, Label: "800,001", Status: "connected"})
	_ = r.Unmount(ctx)
	_ = r.Unmount(ctx)

	out := buf.String()
	for _, want := range []string{
		"overlay opened (session 1)",
		"phase: idle",
		"₿ waiting for data",
		"feed: connected",
		"next block (100% full)",
		"Fee    ~43 sat/vB",
		"Count  3,142 transactions",
		"phase: celebrating",
		"NEW BLOCK #800,001",
		"overlay closed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "next block"); n != 1 {
		t.Errorf("unchanged update printed again: %d times", n)
	}
	if n := strings.Count(out, "overlay closed"); n != 1 {
		t.Errorf("closed printed %d times", n)
	}
}
